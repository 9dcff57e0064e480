package matcher

// TokenID is a dense, zero-based vocabulary id. IDs are stable for the
// lifetime of a run but not across runs.
type TokenID uint32

// TokenSet is a duplicate-free set of vocabulary ids representing one
// record's content. Order carries no meaning.
type TokenSet []TokenID

// Vocabulary assigns each distinct token a dense integer id in
// first-seen order. It is mutated only during the catalog build phase;
// the query phase uses the read-only Lookup path.
type Vocabulary struct {
	ids       map[string]TokenID
	tokenizer *Tokenizer
}

// NewVocabulary creates an empty vocabulary
func NewVocabulary(tokenizer *Tokenizer) *Vocabulary {
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	return &Vocabulary{
		ids:       make(map[string]TokenID),
		tokenizer: tokenizer,
	}
}

// RegisterOrGet assigns a new id on first encounter and returns the
// existing id otherwise
func (v *Vocabulary) RegisterOrGet(token string) TokenID {
	if id, ok := v.ids[token]; ok {
		return id
	}
	id := TokenID(len(v.ids))
	v.ids[token] = id
	return id
}

// Size returns the number of distinct registered tokens
func (v *Vocabulary) Size() int {
	return len(v.ids)
}

// TokenSetFor tokenizes raw text and maps each token to its vocabulary
// id, registering new tokens as needed. Used on the catalog side.
func (v *Vocabulary) TokenSetFor(raw string) TokenSet {
	tokens := v.tokenizer.Tokenize(raw)
	set := make(TokenSet, 0, len(tokens))
	seen := make(map[TokenID]struct{}, len(tokens))
	for _, tok := range tokens {
		id := v.RegisterOrGet(tok)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		set = append(set, id)
	}
	return set
}

// Lookup tokenizes raw text and maps tokens to their vocabulary ids,
// silently dropping tokens the catalog never produced. It never mutates
// the vocabulary and is safe for concurrent use once the build phase
// is over.
func (v *Vocabulary) Lookup(raw string) TokenSet {
	tokens := v.tokenizer.Tokenize(raw)
	set := make(TokenSet, 0, len(tokens))
	seen := make(map[TokenID]struct{}, len(tokens))
	for _, tok := range tokens {
		id, ok := v.ids[tok]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		set = append(set, id)
	}
	return set
}
