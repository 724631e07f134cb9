package domain

// Document is one free-text quote attributed to one game and one dimension.
// Documents are positionally identified within the corpus that produced them.
type Document struct {
	GameID        string `json:"game_id"`
	GameName      string `json:"game_name"`
	DimensionCode string `json:"dimension_code"`
	Text          string `json:"text"`     // Text sent to the embedding provider
	RawText       string `json:"raw_text"` // Normalised quote as shown to users
}

// EmbeddingMatrix holds one vector per document, in document order.
type EmbeddingMatrix [][]float32

// Corpus is an ordered document list together with its embeddings.
// Embeddings is nil until the embedding job completes.
type Corpus struct {
	Documents  []Document      `json:"documents"`
	Embeddings EmbeddingMatrix `json:"-"`
}

// Aligned reports whether every document has a matching embedding.
func (c *Corpus) Aligned() bool {
	return c != nil && c.Embeddings != nil && len(c.Embeddings) == len(c.Documents)
}

// IndicesFor returns the positions of the documents belonging to a game.
func (c *Corpus) IndicesFor(gameID string) []int {
	if c == nil {
		return nil
	}
	var idx []int
	for i := range c.Documents {
		if c.Documents[i].GameID == gameID {
			idx = append(idx, i)
		}
	}
	return idx
}

// Texts returns the provider input text of every document, in order.
func Texts(docs []Document) []string {
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}
	return texts
}
