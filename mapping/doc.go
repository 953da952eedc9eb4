// Package mapping resolves where each member of a record type reads its
// value from.
//
// A record type is described by a table of Member values. Each member names
// a struct field or a single-argument setter, declares its conversion target
// and carries at most one Declaration: IndexMapping to read a fixed column,
// or TitleMapping to look the column up in the header row.
//
//	var widgetMembers = []mapping.Member[Widget]{
//		{
//			Name:         "ID",
//			Type:         conversion.Type(conversion.KindInt),
//			Declarations: []mapping.Declaration{mapping.Title("id")},
//			Apply:        mapping.Field(func(w *Widget) *int { return &w.ID }),
//		},
//		{
//			Name:         "SetPrice",
//			Type:         conversion.Nullable(conversion.KindFloat),
//			Declarations: []mapping.Declaration{mapping.Index(3)},
//			Apply:        mapping.Setter((*Widget).SetPrice),
//		},
//	}
//
// Members derives the same table from struct tags:
//
//	type Widget struct {
//		ID    int      `csv:"title=id"`
//		Price *float64 `csv:"index=3"`
//	}
//
// Build turns the table and an optional header row into the ordered Model
// list used for every row of one read.
package mapping
