package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnserializable indicates an argument that has no deterministic string
// form and therefore cannot participate in a cache key.
var ErrUnserializable = errors.New("unserializable cache key argument")

// timeKeyFormat is the fixed representation for time arguments. Times are
// normalized to UTC so that the same instant always hashes identically.
const timeKeyFormat = time.RFC3339Nano

// DeriveKey builds a deterministic cache key for an operation invocation.
//
// Positional args are serialized in order; kwargs are sorted by name first,
// so the insertion order of the map never affects the key. The canonical
// form is hashed with SHA-256 and truncated to 128 bits, which is stable
// across process restarts (no seeding) and collision-resistant at gateway
// scale.
//
// Format: gw:<operation>:<32 hex chars>
func DeriveKey(operation string, args []any, kwargs map[string]any) (string, error) {
	if operation == "" {
		return "", fmt.Errorf("%w: empty operation name", ErrUnserializable)
	}

	var b strings.Builder
	b.WriteString(operation)

	for _, arg := range args {
		b.WriteByte(':')
		if err := writeValue(&b, arg); err != nil {
			return "", err
		}
	}

	if len(kwargs) > 0 {
		names := make([]string, 0, len(kwargs))
		for name := range kwargs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			b.WriteByte(':')
			b.WriteString(name)
			b.WriteByte('=')
			if err := writeValue(&b, kwargs[name]); err != nil {
				return "", err
			}
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return "gw:" + operation + ":" + hex.EncodeToString(sum[:16]), nil
}

// writeValue appends the canonical form of a single argument.
// Supported: nil, strings, booleans, integers, floats, time.Time, and
// nested slices/maps (string keys) of the same.
func writeValue(b *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("<nil>")
		return nil
	case string:
		b.WriteString(strconv.Quote(val))
		return nil
	case bool:
		b.WriteString(strconv.FormatBool(val))
		return nil
	case time.Time:
		b.WriteString(val.UTC().Format(timeKeyFormat))
		return nil
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		return nil
	case float32:
		b.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 32))
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
		return nil
	case reflect.Slice, reflect.Array:
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map with %s keys", ErrUnserializable, rv.Type().Key().Kind())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte('=')
			if err := writeValue(b, rv.MapIndex(reflect.ValueOf(k)).Interface()); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnserializable, v)
	}
}
