package document

// Metadata keys set on every loaded document
const (
	MetadataSource = "source"
	MetadataSeqNum = "seq_num"
)

// Document represents a text document with metadata
type Document struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// New creates a document carrying the source and sequence number metadata
func New(content, source string, seqNum int) Document {
	return Document{
		PageContent: content,
		Metadata: map[string]interface{}{
			MetadataSource: source,
			MetadataSeqNum: seqNum,
		},
	}
}

// Source returns the source metadata value, or "" when unset
func (d Document) Source() string {
	s, _ := d.Metadata[MetadataSource].(string)
	return s
}

// SeqNum returns the 1-based position of the document in its load, or 0 when unset.
// Decoded documents carry float64 values, so both forms are accepted.
func (d Document) SeqNum() int {
	switch v := d.Metadata[MetadataSeqNum].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
