package indexing

// RawDoc is an unparsed document entering the pipeline at the source
// stage.
type RawDoc struct {
	ID      string
	Payload []byte
}

// ParsedDoc is a RawDoc after the processor stage has run it through a
// DocMapper.
type ParsedDoc struct {
	ID     string
	Fields map[string]string
}

// DocMapper parses a raw document payload into tagged fields. spec.md §1
// places document mapping and tokenization out of scope; this interface
// is the opaque seam the processor stage calls through, with a trivial
// pass-through implementation standing in for quickwit's real tantivy
// schema mapping.
type DocMapper interface {
	Parse(doc RawDoc) (ParsedDoc, error)

	// TagNamedFields lists the field names this mapper extracts. No
	// pipeline stage calls it; the processor stage calls only Parse.
	TagNamedFields() []string
}

// PassthroughMapper is a trivial DocMapper that treats the whole payload
// as a single "body" field. It exists only to exercise the DocMapper seam
// end to end, not to model real tokenization.
type PassthroughMapper struct{}

func (PassthroughMapper) Parse(doc RawDoc) (ParsedDoc, error) {
	return ParsedDoc{
		ID:     doc.ID,
		Fields: map[string]string{"body": string(doc.Payload)},
	}, nil
}

func (PassthroughMapper) TagNamedFields() []string {
	return []string{"body"}
}
