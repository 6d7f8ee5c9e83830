package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
)

// Violation is one reading value outside its threshold bounds.
type Violation struct {
	Field string
	Slot  int
	Value float64
	Min   float64
	Max   float64
}

// Evaluate checks reading against thresholds. A threshold applies to a slot
// when its field name is the slot key ("field3") or the channel's label for
// that slot, compared case-insensitively. Values equal to a bound pass;
// unreported slots are skipped. Results follow slot order.
func Evaluate(channel *models.Channel, thresholds []models.Threshold, reading models.Reading) []Violation {
	bySlot := make(map[int]models.Threshold, len(thresholds))
	labels := channel.SlotLabels()
	for _, th := range thresholds {
		slot, ok := slotFor(th.FieldName, labels)
		if !ok {
			continue
		}
		// An exact slot key wins over a label match for the same slot.
		if prev, taken := bySlot[slot]; taken && strings.EqualFold(prev.FieldName, models.SlotName(slot)) {
			continue
		}
		bySlot[slot] = th
	}

	var out []Violation
	for i, v := range reading {
		th, ok := bySlot[i]
		if !ok || v == nil {
			continue
		}
		if *v < th.MinValue || *v > th.MaxValue {
			out = append(out, Violation{
				Field: th.FieldName,
				Slot:  i,
				Value: *v,
				Min:   th.MinValue,
				Max:   th.MaxValue,
			})
		}
	}
	return out
}

func slotFor(field string, labels [models.FieldSlots]string) (int, bool) {
	name := strings.TrimSpace(field)
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "field") {
		if n, err := strconv.Atoi(lower[len("field"):]); err == nil && n >= 1 && n <= models.FieldSlots {
			return n - 1, true
		}
	}
	for i, label := range labels {
		if label != "" && strings.EqualFold(label, name) {
			return i, true
		}
	}
	return 0, false
}

// FieldNames lists the violated fields in evaluation order.
func FieldNames(vs []Violation) []string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Field
	}
	return names
}

// Describe renders violations as a single alert description.
func Describe(vs []Violation) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		switch {
		case v.Value < v.Min:
			parts[i] = fmt.Sprintf("%s reading %g is below minimum %g", v.Field, v.Value, v.Min)
		default:
			parts[i] = fmt.Sprintf("%s reading %g is above maximum %g", v.Field, v.Value, v.Max)
		}
	}
	return strings.Join(parts, "; ")
}
