package models

import (
	"fmt"
	"time"
)

// Feed is one reading event of a channel. EntryID is minted from the
// channel's LastEntryID counter and is unique per channel. SourceEntryID is
// the upstream entry id of an imported reading, also unique per channel.
type Feed struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChannelID     uint      `gorm:"not null;uniqueIndex:idx_feeds_channel_entry;uniqueIndex:idx_feeds_channel_source_entry,priority:1;index:idx_feeds_channel_created,priority:1" json:"channelId"`
	EntryID       int64     `gorm:"not null;uniqueIndex:idx_feeds_channel_entry" json:"entryId"`
	SourceEntryID *int64    `gorm:"uniqueIndex:idx_feeds_channel_source_entry,priority:2" json:"sourceEntryId,omitempty"`
	CreatedAt     time.Time `gorm:"index:idx_feeds_channel_created,priority:2" json:"createdAt"`
	Field1        *float64  `json:"field1"`
	Field2        *float64  `json:"field2"`
	Field3        *float64  `json:"field3"`
	Field4        *float64  `json:"field4"`
	Field5        *float64  `json:"field5"`
	Field6        *float64  `json:"field6"`
	Field7        *float64  `json:"field7"`
	Field8        *float64  `json:"field8"`
}

// Reading holds the raw values of field1..field8; nil means not reported.
type Reading [FieldSlots]*float64

// Values returns the feed's readings in slot order.
func (f *Feed) Values() Reading {
	return Reading{f.Field1, f.Field2, f.Field3, f.Field4, f.Field5, f.Field6, f.Field7, f.Field8}
}

// SetValues copies r into the feed's field columns.
func (f *Feed) SetValues(r Reading) {
	f.Field1, f.Field2, f.Field3, f.Field4 = r[0], r[1], r[2], r[3]
	f.Field5, f.Field6, f.Field7, f.Field8 = r[4], r[5], r[6], r[7]
}

// SlotName returns the canonical key ("field1".."field8") of a zero-based slot.
func SlotName(i int) string {
	return fmt.Sprintf("field%d", i+1)
}
