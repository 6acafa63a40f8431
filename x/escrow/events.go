package escrow

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/orm"
)

// Topic tags the lifecycle transition an event records.
type Topic byte

const (
	TopicEscrowCreated     Topic = 1
	TopicParticipantJoined Topic = 2
	TopicEscrowCompleted   Topic = 3
	TopicWithdrawalMade    Topic = 4
	TopicEscrowCancelled   Topic = 5
)

func (t Topic) String() string {
	switch t {
	case TopicEscrowCreated:
		return "escrow_created"
	case TopicParticipantJoined:
		return "participant_joined"
	case TopicEscrowCompleted:
		return "escrow_completed"
	case TopicWithdrawalMade:
		return "withdrawal_made"
	case TopicEscrowCancelled:
		return "escrow_cancelled"
	default:
		return "invalid"
	}
}

const eventSchema = 1

// Event is one persisted lifecycle notification. Subject is the
// acting address, zeroed when the transition has no single actor.
// Count carries the joined count on joins and the refund count on
// cancellation; it is zero otherwise.
type Event struct {
	Topic   Topic
	Code    []byte
	Subject pool.Address
	Amount  coin.Amount
	Count   uint32
	Time    int64
}

var _ orm.CloneableData = (*Event)(nil)

func (e *Event) Validate() error {
	if err := validateCode(e.Code); err != nil {
		return err
	}
	if len(e.Subject) != pool.AddressLength {
		return errors.Wrap(errors.ErrInput, "subject width")
	}
	return nil
}

func (e *Event) Copy() orm.CloneableData {
	cpy := *e
	cpy.Code = append([]byte(nil), e.Code...)
	cpy.Subject = e.Subject.Clone()
	return &cpy
}

func (e *Event) Marshal() ([]byte, error) {
	raw := make([]byte, 0, 64)
	raw = append(raw, eventSchema)
	raw = append(raw, byte(e.Topic))
	raw = append(raw, e.Code...)
	raw = append(raw, e.Subject...)
	raw = append(raw, e.Amount.Marshal()...)
	raw = appendUint32(raw, e.Count)
	raw = appendInt64(raw, e.Time)
	return raw, nil
}

func (e *Event) Unmarshal(raw []byte) error {
	r := reader{raw: raw}
	r.schema(eventSchema)
	e.Topic = Topic(r.byte())
	e.Code = r.bytes(CodeLength)
	e.Subject = r.address()
	e.Amount = r.amount()
	e.Count = r.uint32()
	e.Time = r.int64()
	return r.done()
}

// noSubject fills the subject field of actor-less events.
var noSubject = make(pool.Address, pool.AddressLength)

// Emitter appends sequence-numbered event records. Appends are fire
// and forget for the engine: handlers ignore emit errors, an operation
// never fails over its notification.
type Emitter struct {
	bucket orm.Bucket
	seq    orm.Sequence
}

// NewEmitter initializes an event emitter.
func NewEmitter() Emitter {
	b := orm.NewBucket("event", orm.NewSimpleObj(nil, &Event{}))
	return Emitter{
		bucket: b,
		seq:    b.Sequence("id"),
	}
}

// Emit persists the event under the next sequence number.
func (e Emitter) Emit(db pool.KVStore, ev *Event) error {
	if ev.Subject == nil {
		ev.Subject = noSubject
	}
	key := e.seq.NextVal(db)
	return e.bucket.Save(db, orm.NewSimpleObj(key, ev))
}

// List returns all persisted events in append order.
func (e Emitter) List(db pool.ReadOnlyKVStore) ([]*Event, error) {
	var out []*Event
	it := e.bucket.Iterator(db)
	defer it.Close()
	for it.Valid() {
		obj, err := it.Load()
		if err != nil {
			return nil, err
		}
		out = append(out, obj.Value().(*Event))
		it.Next()
	}
	return out, nil
}
