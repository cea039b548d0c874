package diag

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/loggable/internal/trace"
)

// Category classifies emitted records.
type Category string

const (
	Tech     Category = "TECH"
	Business Category = "BUSINESS"
	Perf     Category = "PERF"
)

// Keys owned by this package.
const (
	KeyService  = "service"
	KeyContext  = "context"
	KeyCategory = "category"
	KeyDuration = "duration"
)

// Separator joins context pairs and stack frames in rendered output.
const Separator = "#"

var ownedKeys = []string{KeyService, KeyContext, KeyCategory, KeyDuration}

// Owned reports whether key is written by Publish.
func Owned(key string) bool {
	return slices.Contains(ownedKeys, key)
}

// Publish writes the record's diagnostic keys into store. The duration key
// is only written for Perf records with a duration.
func Publish(store Store, rec *trace.Record, category Category, duration *time.Duration) {
	store.Put(KeyCategory, string(category))
	store.Put(KeyContext, FormatContext(rec.Context()))
	store.Put(KeyService, rec.Service())
	if category == Perf && duration != nil {
		store.Put(KeyDuration, strconv.FormatInt(duration.Milliseconds(), 10))
	}
}

// Release removes the keys written by Publish, leaving any other key alone.
func Release(store Store) {
	for _, k := range ownedKeys {
		store.Remove(k)
	}
}

// FormatContext serializes ctx as k1=v1#k2=v2. Pairs are sorted by key so
// the output is stable.
func FormatContext(ctx map[string]string) string {
	if len(ctx) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(ctx[k])
	}
	return sb.String()
}
