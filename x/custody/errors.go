package custody

import "github.com/commonpool/pool/errors"

// ErrTransferFailed is the root for any failed value movement, native
// or receipts. The cause chain carries the specific reason.
var ErrTransferFailed = errors.Register(1110, "transfer failed")
