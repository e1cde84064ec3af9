package command

import (
	"math"
	"strings"
	"time"

	"github.com/yndnr/rosso/internal/core/domain"
	"github.com/yndnr/rosso/internal/storage/memory"
)

// parser describes one command. arity counts the name itself; a negative
// arity means "at least -arity".
type parser struct {
	arity int
	parse func(args [][]byte) (Command, error)
}

var parsers = map[string]parser{
	"GET":    {2, func(a [][]byte) (Command, error) { return Get{Key: a[0]}, nil }},
	"SET":    {-3, parseSet},
	"APPEND": {3, func(a [][]byte) (Command, error) { return Append{Key: a[0], Value: a[1]}, nil }},
	"INCR":   {2, func(a [][]byte) (Command, error) { return Incr{Key: a[0]}, nil }},
	"STRLEN": {2, func(a [][]byte) (Command, error) { return Strlen{Key: a[0]}, nil }},
	"TTL":    {2, func(a [][]byte) (Command, error) { return TTL{Key: a[0]}, nil }},
	"PTTL":   {2, func(a [][]byte) (Command, error) { return PTTL{Key: a[0]}, nil }},
	"DEL":    {-2, func(a [][]byte) (Command, error) { return Del{Keys: a}, nil }},
	"EXISTS": {-2, func(a [][]byte) (Command, error) { return Exists{Keys: a}, nil }},
}

// Known reports whether name is a keyspace command.
func Known(name string) bool {
	_, ok := parsers[strings.ToUpper(name)]
	return ok
}

// Parse resolves name (case-insensitive) and args, which exclude the name.
func Parse(name string, args [][]byte) (Command, error) {
	p, ok := parsers[strings.ToUpper(name)]
	if !ok {
		return nil, domain.UnknownCommand(name, args)
	}

	n := len(args) + 1
	if (p.arity > 0 && n != p.arity) || (p.arity < 0 && n < -p.arity) {
		return nil, domain.WrongArity(name)
	}

	return p.parse(args)
}

// SET key value [NX | XX] [GET] [EX s | PX ms | EXAT ts | PXAT ts-ms | KEEPTTL]
func parseSet(args [][]byte) (Command, error) {
	cmd := Set{Key: args[0], Value: args[1]}

	for i := 2; i < len(args); i++ {
		switch opt := strings.ToUpper(string(args[i])); opt {
		case "NX", "XX":
			if cmd.Condition != memory.Always {
				return nil, domain.ErrSyntax
			}
			cmd.Condition = memory.IfNotExists
			if opt == "XX" {
				cmd.Condition = memory.IfExists
			}

		case "GET":
			if cmd.ReturnOld {
				return nil, domain.ErrSyntax
			}
			cmd.ReturnOld = true

		case "KEEPTTL":
			if cmd.Expiration.Kind != ExpireNone {
				return nil, domain.ErrSyntax
			}
			cmd.Expiration.Kind = ExpireKeep

		case "EX", "PX", "EXAT", "PXAT":
			if cmd.Expiration.Kind != ExpireNone || i+1 >= len(args) {
				return nil, domain.ErrSyntax
			}
			i++
			exp, err := parseExpiration(opt, args[i])
			if err != nil {
				return nil, err
			}
			cmd.Expiration = exp

		default:
			return nil, domain.ErrSyntax
		}
	}

	return cmd, nil
}

// Upper bounds keep every expiration representable as a time.Duration or time.Time.
var expireLimits = map[string]struct {
	kind ExpireKind
	max  int64
}{
	"EX":   {ExpireSeconds, math.MaxInt64 / int64(time.Second)},
	"PX":   {ExpireMilliseconds, math.MaxInt64 / int64(time.Millisecond)},
	"EXAT": {ExpireUnixSeconds, math.MaxInt64 / 1000},
	"PXAT": {ExpireUnixMilliseconds, math.MaxInt64},
}

func parseExpiration(opt string, arg []byte) (Expiration, error) {
	n, ok := domain.ParseInteger(arg)
	if !ok {
		return Expiration{}, domain.ErrNotAnInteger
	}
	limit := expireLimits[opt]
	if n <= 0 || n > limit.max {
		return Expiration{}, domain.InvalidExpire("set")
	}
	return Expiration{Kind: limit.kind, N: n}, nil
}

// options converts a parsed SET into keyspace options.
func (c Set) options() memory.SetOptions {
	opts := memory.SetOptions{Condition: c.Condition, ReturnOld: c.ReturnOld}
	switch c.Expiration.Kind {
	case ExpireSeconds:
		opts.TTL = time.Duration(c.Expiration.N) * time.Second
	case ExpireMilliseconds:
		opts.TTL = time.Duration(c.Expiration.N) * time.Millisecond
	case ExpireUnixSeconds:
		opts.ExpiresAt = time.Unix(c.Expiration.N, 0)
	case ExpireUnixMilliseconds:
		opts.ExpiresAt = time.UnixMilli(c.Expiration.N)
	case ExpireKeep:
		opts.KeepTTL = true
	}
	return opts
}
