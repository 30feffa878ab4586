package present

import (
	"time"

	"github.com/dustin/go-humanize"
)

// IconSpec describes how one numeric record attribute is shown.
type IconSpec struct {
	Label string
	Icon  string
}

// Icons is the catalog of attributes that can be shown as icons.
var Icons = map[string]IconSpec{
	"idx_updated_at":         {Label: "Last update", Icon: "fa-solid fa-arrows-rotate"},
	"idx_created_at":         {Label: "Creation date", Icon: "fa-solid fa-clock"},
	"idx_forks_count":        {Label: "GitHub forks", Icon: "fa-solid fa-code-fork"},
	"idx_stars_count":        {Label: "GitHub stars", Icon: "fa-regular fa-star"},
	"idx_contributors_count": {Label: "GitHub contributors", Icon: "fa-solid fa-users"},
	"idx_comments_count":     {Label: "Comments", Icon: "fa-regular fa-comment"},
}

// Icon is one rendered icon.
type Icon struct {
	Key   string
	Label string
	Icon  string
	Value string
}

// FilteredIcons returns an icon for every key that is in the catalog and
// present in fields, in the order of keys. Timestamps (unix seconds) are shown
// relative to now.
func FilteredIcons(fields map[string]any, keys []string, now time.Time) []Icon {
	icons := make([]Icon, 0, len(keys))
	for _, key := range keys {
		spec, known := Icons[key]
		if !known {
			continue
		}
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}
		n, ok := toInt64(raw)
		if !ok {
			continue
		}

		value := humanize.Comma(n)
		if key == "idx_updated_at" || key == "idx_created_at" {
			value = humanize.RelTime(time.Unix(n, 0), now, "ago", "from now")
		}
		icons = append(icons, Icon{Key: key, Label: spec.Label, Icon: spec.Icon, Value: value})
	}
	return icons
}

// nonZero drops the attributes whose value is zero. Cards never show a zero
// count or an unset timestamp.
func nonZero(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if n, ok := toInt64(v); ok && n == 0 {
			continue
		}
		out[k] = v
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
