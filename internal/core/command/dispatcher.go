package command

import (
	"fmt"

	"github.com/yndnr/rosso/internal/core/domain"
	"github.com/yndnr/rosso/internal/core/reply"
	"github.com/yndnr/rosso/internal/storage/memory"
)

// Store is the keyspace surface the dispatcher needs.
type Store interface {
	Get(key []byte) ([]byte, bool, error)
	SetWithOptions(key, payload []byte, opts memory.SetOptions) (memory.SetResult, error)
	Append(key, suffix []byte) (int64, error)
	Incr(key []byte) (int64, error)
	Strlen(key []byte) (int64, error)
	TTL(key []byte) int64
	PTTL(key []byte) int64
	Del(keys ...[]byte) int64
	Exists(keys ...[]byte) int64
}

var _ Store = (*memory.Keyspace)(nil)

// Dispatcher executes commands against a Store. It holds no per-client state.
type Dispatcher struct {
	store Store
}

// NewDispatcher creates a dispatcher over store.
func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Dispatch parses and executes one command.
func (d *Dispatcher) Dispatch(name string, args [][]byte) reply.Reply {
	cmd, err := Parse(name, args)
	if err != nil {
		return reply.FromError(err)
	}
	return d.Execute(cmd)
}

// Execute runs a parsed command.
func (d *Dispatcher) Execute(cmd Command) reply.Reply {
	switch c := cmd.(type) {
	case Get:
		v, ok, err := d.store.Get(c.Key)
		if err != nil {
			return reply.FromError(err)
		}
		if !ok {
			return reply.Nil
		}
		return reply.Bulk(v)

	case Set:
		res, err := d.store.SetWithOptions(c.Key, c.Value, c.options())
		if err != nil {
			return reply.FromError(err)
		}
		if c.ReturnOld {
			if !res.HadOld {
				return reply.Nil
			}
			return reply.Bulk(res.Old)
		}
		if !res.Applied {
			return reply.Nil
		}
		return reply.OK

	case Append:
		return integer(d.store.Append(c.Key, c.Value))

	case Incr:
		return integer(d.store.Incr(c.Key))

	case Strlen:
		return integer(d.store.Strlen(c.Key))

	case TTL:
		return reply.Integer(d.store.TTL(c.Key))

	case PTTL:
		return reply.Integer(d.store.PTTL(c.Key))

	case Del:
		return reply.Integer(d.store.Del(c.Keys...))

	case Exists:
		return reply.Integer(d.store.Exists(c.Keys...))

	default:
		return reply.FromError(domain.ErrInternal.WithDetails(fmt.Sprintf("unhandled command %T", cmd)))
	}
}

func integer(n int64, err error) reply.Reply {
	if err != nil {
		return reply.FromError(err)
	}
	return reply.Integer(n)
}
