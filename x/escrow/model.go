package escrow

import (
	"encoding/binary"

	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/orm"
)

// Status is the lifecycle state of an escrow. Complete and Cancelled
// are terminal.
type Status byte

const (
	Open      Status = 0
	Complete  Status = 1
	Cancelled Status = 2
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Complete:
		return "complete"
	case Cancelled:
		return "cancelled"
	default:
		return "invalid"
	}
}

const (
	escrowSchema = 1

	// CodeLength is the width of an escrow code: an 8 byte big-endian
	// sequence value followed by a 4 byte creator fingerprint. The
	// sequence alone makes codes unique; the fingerprint ties a code to
	// its creator at a glance.
	CodeLength = 12

	fingerprintLength = 4
)

// newCode derives the escrow code from a fresh sequence value and the
// creator address, without any store lookup.
func newCode(seq []byte, creator pool.Address) []byte {
	code := make([]byte, 0, CodeLength)
	code = append(code, seq...)
	code = append(code, creator[:fingerprintLength]...)
	return code
}

// validateCode ensures raw has the exact shape of an escrow code.
func validateCode(raw []byte) error {
	if len(raw) != CodeLength {
		return errors.Wrapf(errors.ErrInput, "escrow code must be %d bytes", CodeLength)
	}
	return nil
}

// Account returns the custody address holding an escrow's pooled value.
func Account(code []byte) pool.Address {
	return pool.NewCondition("escrow", "seq", code).Address()
}

// Escrow is the registry record of one pooled escrow.
type Escrow struct {
	Creator          pool.Address
	TargetTotal      coin.Amount
	ShareAmount      coin.Amount
	ParticipantCount uint32
	JoinedCount      uint32
	Status           Status
	// YieldBaseline is the receipt balance frozen when the escrow
	// completed. Zero while open.
	YieldBaseline coin.Amount
	// AccumulatedReceipts is the running total of receipts obtained
	// from all contributions.
	AccumulatedReceipts coin.Amount
	// WithdrawnReceipts is the running total of receipts already paid
	// out by withdrawals. Adding it back to the account balance keeps
	// the total yield stable no matter how many payouts came before.
	WithdrawnReceipts coin.Amount
	// CreatedAt is the block time of creation, unix seconds.
	CreatedAt int64
}

var _ orm.CloneableData = (*Escrow)(nil)

func (e *Escrow) Validate() error {
	if err := e.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	if e.ParticipantCount < 2 {
		return errors.Wrap(ErrInsufficientParticipants, "participant count")
	}
	if e.JoinedCount > e.ParticipantCount {
		return errors.Wrap(errors.ErrModel, "joined count exceeds participant count")
	}
	if e.Status > Cancelled {
		return errors.Wrapf(errors.ErrModel, "status %d", e.Status)
	}
	return nil
}

func (e *Escrow) Copy() orm.CloneableData {
	cpy := *e
	cpy.Creator = e.Creator.Clone()
	return &cpy
}

func (e *Escrow) Marshal() ([]byte, error) {
	raw := make([]byte, 0, 64)
	raw = append(raw, escrowSchema)
	raw = append(raw, e.Creator...)
	raw = append(raw, e.TargetTotal.Marshal()...)
	raw = append(raw, e.ShareAmount.Marshal()...)
	raw = appendUint32(raw, e.ParticipantCount)
	raw = appendUint32(raw, e.JoinedCount)
	raw = append(raw, byte(e.Status))
	raw = append(raw, e.YieldBaseline.Marshal()...)
	raw = append(raw, e.AccumulatedReceipts.Marshal()...)
	raw = append(raw, e.WithdrawnReceipts.Marshal()...)
	raw = appendInt64(raw, e.CreatedAt)
	return raw, nil
}

func (e *Escrow) Unmarshal(raw []byte) error {
	r := reader{raw: raw}
	r.schema(escrowSchema)
	e.Creator = r.address()
	e.TargetTotal = r.amount()
	e.ShareAmount = r.amount()
	e.ParticipantCount = r.uint32()
	e.JoinedCount = r.uint32()
	e.Status = Status(r.byte())
	e.YieldBaseline = r.amount()
	e.AccumulatedReceipts = r.amount()
	e.WithdrawnReceipts = r.amount()
	e.CreatedAt = r.int64()
	return r.done()
}

// AsEscrow extracts an *Escrow value or nil from the object.
func AsEscrow(obj orm.Object) *Escrow {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Escrow)
}

// EscrowBucket stores escrow records keyed by their 12 byte code.
type EscrowBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewEscrowBucket initializes an EscrowBucket with its code sequence.
func NewEscrowBucket() EscrowBucket {
	b := orm.NewBucket("esc", orm.NewSimpleObj(nil, &Escrow{}))
	return EscrowBucket{
		Bucket: b,
		idSeq:  b.Sequence("id"),
	}
}

// Create persists a new escrow record under a freshly derived code and
// returns that code.
func (b EscrowBucket) Create(db pool.KVStore, e *Escrow) ([]byte, error) {
	seq := b.idSeq.NextVal(db)
	code := newCode(seq, e.Creator)
	if err := b.Save(db, orm.NewSimpleObj(code, e)); err != nil {
		return nil, err
	}
	return code, nil
}

// Load returns the escrow stored under code, or ErrEscrowNotFound.
func (b EscrowBucket) Load(db pool.ReadOnlyKVStore, code []byte) (*Escrow, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	obj, err := b.Get(db, code)
	if err != nil {
		return nil, err
	}
	e := AsEscrow(obj)
	if e == nil {
		return nil, errors.Wrapf(ErrEscrowNotFound, "%X", code)
	}
	return e, nil
}

const contributionSchema = 1

// Contribution is the ledger record of one participant in one escrow.
type Contribution struct {
	Participant pool.Address
	// Principal is the native amount paid in, always one share.
	Principal coin.Amount
	// Receipts is what staking the principal yielded.
	Receipts coin.Amount
	// Withdrawn is set exactly once, after a successful payout.
	Withdrawn bool
}

var _ orm.CloneableData = (*Contribution)(nil)

func (c *Contribution) Validate() error {
	if err := c.Participant.Validate(); err != nil {
		return errors.Wrap(err, "participant")
	}
	return nil
}

func (c *Contribution) Copy() orm.CloneableData {
	cpy := *c
	cpy.Participant = c.Participant.Clone()
	return &cpy
}

func (c *Contribution) Marshal() ([]byte, error) {
	raw := make([]byte, 0, 32)
	raw = append(raw, contributionSchema)
	raw = append(raw, c.Participant...)
	raw = append(raw, c.Principal.Marshal()...)
	raw = append(raw, c.Receipts.Marshal()...)
	if c.Withdrawn {
		raw = append(raw, 1)
	} else {
		raw = append(raw, 0)
	}
	return raw, nil
}

func (c *Contribution) Unmarshal(raw []byte) error {
	r := reader{raw: raw}
	r.schema(contributionSchema)
	c.Participant = r.address()
	c.Principal = r.amount()
	c.Receipts = r.amount()
	c.Withdrawn = r.byte() == 1
	return r.done()
}

// AsContribution extracts a *Contribution value or nil from the object.
func AsContribution(obj orm.Object) *Contribution {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Contribution)
}

// ContributionBucket stores contributions keyed by code || participant.
type ContributionBucket struct {
	orm.Bucket
}

// NewContributionBucket initializes a ContributionBucket
func NewContributionBucket() ContributionBucket {
	return ContributionBucket{
		Bucket: orm.NewBucket("contrib", orm.NewSimpleObj(nil, &Contribution{})),
	}
}

// contributionKey is the structured composite key for one participant
// in one escrow.
func contributionKey(code []byte, participant pool.Address) []byte {
	key := make([]byte, 0, CodeLength+len(participant))
	key = append(key, code...)
	key = append(key, participant...)
	return key
}

// Load returns the participant's contribution in the escrow, nil when
// the participant never joined.
func (b ContributionBucket) Load(db pool.ReadOnlyKVStore, code []byte, participant pool.Address) (*Contribution, error) {
	obj, err := b.Get(db, contributionKey(code, participant))
	if err != nil {
		return nil, err
	}
	return AsContribution(obj), nil
}

// Save persists the contribution under its composite key.
func (b ContributionBucket) Save(db pool.KVStore, code []byte, c *Contribution) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(contributionKey(code, c.Participant), c))
}

const listSchema = 1

// ParticipantList is the ordered set of addresses that joined one
// escrow, maintained so cancel can iterate contributions without
// scanning unrelated state.
type ParticipantList struct {
	Addresses []pool.Address
}

var _ orm.CloneableData = (*ParticipantList)(nil)

func (l *ParticipantList) Validate() error {
	for _, a := range l.Addresses {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (l *ParticipantList) Copy() orm.CloneableData {
	addrs := make([]pool.Address, len(l.Addresses))
	for i, a := range l.Addresses {
		addrs[i] = a.Clone()
	}
	return &ParticipantList{Addresses: addrs}
}

func (l *ParticipantList) Marshal() ([]byte, error) {
	raw := make([]byte, 0, 5+len(l.Addresses)*pool.AddressLength)
	raw = append(raw, listSchema)
	raw = appendUint32(raw, uint32(len(l.Addresses)))
	for _, a := range l.Addresses {
		raw = append(raw, a...)
	}
	return raw, nil
}

func (l *ParticipantList) Unmarshal(raw []byte) error {
	r := reader{raw: raw}
	r.schema(listSchema)
	n := r.uint32()
	l.Addresses = make([]pool.Address, 0, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		l.Addresses = append(l.Addresses, r.address())
	}
	return r.done()
}

// ParticipantBucket stores the join-ordered participant list per code.
type ParticipantBucket struct {
	orm.Bucket
}

// NewParticipantBucket initializes a ParticipantBucket
func NewParticipantBucket() ParticipantBucket {
	return ParticipantBucket{
		Bucket: orm.NewBucket("party", orm.NewSimpleObj(nil, &ParticipantList{})),
	}
}

// Load returns the participant list of the escrow, empty when absent.
func (b ParticipantBucket) Load(db pool.ReadOnlyKVStore, code []byte) (*ParticipantList, error) {
	obj, err := b.Get(db, code)
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.Value() == nil {
		return &ParticipantList{}, nil
	}
	return obj.Value().(*ParticipantList), nil
}

// Append adds the participant to the end of the escrow's list.
func (b ParticipantBucket) Append(db pool.KVStore, code []byte, participant pool.Address) error {
	l, err := b.Load(db, code)
	if err != nil {
		return err
	}
	l.Addresses = append(l.Addresses, participant)
	return b.Save(db, orm.NewSimpleObj(code, l))
}

// UserList is the list of escrow codes one address has joined, in join
// order.
type UserList struct {
	Codes [][]byte
}

var _ orm.CloneableData = (*UserList)(nil)

func (l *UserList) Validate() error {
	for _, c := range l.Codes {
		if err := validateCode(c); err != nil {
			return err
		}
	}
	return nil
}

func (l *UserList) Copy() orm.CloneableData {
	codes := make([][]byte, len(l.Codes))
	for i, c := range l.Codes {
		codes[i] = append([]byte(nil), c...)
	}
	return &UserList{Codes: codes}
}

func (l *UserList) Marshal() ([]byte, error) {
	raw := make([]byte, 0, 5+len(l.Codes)*CodeLength)
	raw = append(raw, listSchema)
	raw = appendUint32(raw, uint32(len(l.Codes)))
	for _, c := range l.Codes {
		raw = append(raw, c...)
	}
	return raw, nil
}

func (l *UserList) Unmarshal(raw []byte) error {
	r := reader{raw: raw}
	r.schema(listSchema)
	n := r.uint32()
	l.Codes = make([][]byte, 0, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		l.Codes = append(l.Codes, r.bytes(CodeLength))
	}
	return r.done()
}

// UserBucket stores the per-address list of joined escrows.
type UserBucket struct {
	orm.Bucket
}

// NewUserBucket initializes a UserBucket
func NewUserBucket() UserBucket {
	return UserBucket{
		Bucket: orm.NewBucket("user", orm.NewSimpleObj(nil, &UserList{})),
	}
}

// Load returns the codes joined by the address, empty when absent.
func (b UserBucket) Load(db pool.ReadOnlyKVStore, addr pool.Address) (*UserList, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.Value() == nil {
		return &UserList{}, nil
	}
	return obj.Value().(*UserList), nil
}

// Append records that the address joined the escrow.
func (b UserBucket) Append(db pool.KVStore, addr pool.Address, code []byte) error {
	l, err := b.Load(db, addr)
	if err != nil {
		return err
	}
	l.Codes = append(l.Codes, append([]byte(nil), code...))
	return b.Save(db, orm.NewSimpleObj(addr, l))
}

// ---- codec helpers ----

func appendUint32(raw []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(raw, buf[:]...)
}

func appendInt64(raw []byte, v int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return append(raw, buf[:]...)
}

// reader consumes a fixed-layout record front to back, latching the
// first error and reporting leftovers in done.
type reader struct {
	raw []byte
	err error
}

func (r *reader) schema(want byte) {
	if b := r.byte(); r.err == nil && b != want {
		r.err = errors.Wrapf(errors.ErrInput, "schema %d", b)
	}
}

func (r *reader) byte() byte {
	if r.err != nil {
		return 0
	}
	if len(r.raw) < 1 {
		r.err = errors.Wrap(errors.ErrInput, "truncated record")
		return 0
	}
	b := r.raw[0]
	r.raw = r.raw[1:]
	return b
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.raw) < n {
		r.err = errors.Wrap(errors.ErrInput, "truncated record")
		return nil
	}
	out := append([]byte(nil), r.raw[:n]...)
	r.raw = r.raw[n:]
	return out
}

func (r *reader) address() pool.Address {
	return pool.Address(r.bytes(pool.AddressLength))
}

func (r *reader) amount() coin.Amount {
	if r.err != nil {
		return 0
	}
	a, rest, err := coin.ReadAmount(r.raw)
	if err != nil {
		r.err = err
		return 0
	}
	r.raw = rest
	return a
}

func (r *reader) uint32() uint32 {
	raw := r.bytes(4)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(raw)
}

func (r *reader) int64() int64 {
	raw := r.bytes(8)
	if r.err != nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(raw))
}

func (r *reader) done() error {
	if r.err != nil {
		return r.err
	}
	if len(r.raw) != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing bytes", len(r.raw))
	}
	return nil
}
