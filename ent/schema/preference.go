package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Preference stores a single user setting as a key/value pair.
// Settings include language pair, difficulty level, passage theme,
// and the stored provider credential.
type Preference struct {
	ent.Schema
}

func (Preference) Fields() []ent.Field {
	return []ent.Field{
		field.String("key").
			Unique().
			Immutable().
			Comment("Setting name"),
		field.String("value").
			Comment("Setting value"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now).
			Comment("Last write time"),
	}
}
