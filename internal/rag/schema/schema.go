package schema

const (
	// MetadataKeyFileName is the key for the source file name.
	MetadataKeyFileName = "filename"
	// MetadataKeyDocID is the key for the identifier grouping all chunks
	// derived from one uploaded document.
	MetadataKeyDocID = "doc_id"
	// MetadataKeyChunkIndex is the key for a chunk's ordinal within its
	// parent document.
	MetadataKeyChunkIndex = "chunk_index"
	// MetadataKeyPageCount is the key for the page count of the source file.
	MetadataKeyPageCount = "page_count"
	// MetadataKeyScore is the key for the similarity score attached to
	// retrieved chunks.
	MetadataKeyScore = "score"
)

// Document is the central data structure representing a piece of text and its
// associated data. A freshly loaded file is one Document holding the full
// extracted text; the splitter derives chunk Documents from it.
type Document struct {
	// ID is the unique identifier. For a loaded file it is the doc_id; for a
	// chunk it is "{doc_id}_chunk_{index}".
	ID string

	// Text is the string content.
	Text string

	// Embedding is the vector representation of the text.
	Embedding []float32

	// Metadata holds arbitrary data about the document, e.g. filename,
	// doc_id and chunk_index.
	Metadata map[string]interface{}
}

// FileName returns the filename metadata value, or "" when absent.
func (d *Document) FileName() string {
	if v, ok := d.Metadata[MetadataKeyFileName].(string); ok {
		return v
	}
	return ""
}

// DocID returns the doc_id metadata value, or "" when absent.
func (d *Document) DocID() string {
	if v, ok := d.Metadata[MetadataKeyDocID].(string); ok {
		return v
	}
	return ""
}
