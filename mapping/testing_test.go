package mapping

import "github.com/nao1215/csvreader/conversion"

type widget struct {
	ID    int
	Name  string
	Price *float64
	tags  []string
}

func (w *widget) AddTag(tag string) {
	w.tags = append(w.tags, tag)
}

func widgetMembers(idDecl, tagDecl Declaration) []Member[widget] {
	members := []Member[widget]{
		{
			Name:  "ID",
			Type:  conversion.Type(conversion.KindInt),
			Apply: Field(func(w *widget) *int { return &w.ID }),
		},
		{
			Name:  "AddTag",
			Type:  conversion.Type(conversion.KindString),
			Apply: Setter((*widget).AddTag),
		},
	}
	if idDecl != nil {
		members[0].Declarations = []Declaration{idDecl}
	}
	if tagDecl != nil {
		members[1].Declarations = []Declaration{tagDecl}
	}
	return members
}
