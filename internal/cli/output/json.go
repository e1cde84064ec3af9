package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/rosso/internal/cli/connection"
)

// JSONFormatter writes one JSON document per reply. Strings and integers
// map to JSON strings and numbers, nil to null, arrays to arrays and error
// replies to {"error": "..."}.
type JSONFormatter struct{}

func (JSONFormatter) Format(w io.Writer, v connection.Value) error {
	return json.NewEncoder(w).Encode(toJSON(v))
}

func toJSON(v connection.Value) any {
	switch v.Kind {
	case connection.KindSimple, connection.KindBulk:
		return v.Str
	case connection.KindError:
		return map[string]string{"error": v.Str}
	case connection.KindInteger:
		return v.Int
	case connection.KindArray:
		items := make([]any, len(v.Array))
		for i, item := range v.Array {
			items[i] = toJSON(item)
		}
		return items
	default:
		return nil
	}
}
