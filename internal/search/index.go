package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// minFuzzyLen is the shortest token that also gets an edit-distance match
const minFuzzyLen = 4

// Index is a Bleve index of item titles, tags and providers used for
// typeahead. Catalog filtering is done by the query engine, not here.
type Index struct {
	index bleve.Index
}

// suggestDoc is the indexed form of an item
type suggestDoc struct {
	Catalog  string
	ItemID   int
	Title    string
	Provider string
	Tags     []string
}

// Suggestion is one typeahead hit
type Suggestion struct {
	Catalog string  `json:"catalog"`
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// Open opens or creates a Bleve index at path
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx}, nil
}

// NewMemOnly creates an index that lives only in memory
func NewMemOnly() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	// No stemming, prefixes must line up with what the user typed
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	catalogFieldMapping := bleve.NewTextFieldMapping()
	catalogFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Catalog", catalogFieldMapping)
	docMapping.AddFieldMappingsAt("ItemID", bleve.NewNumericFieldMapping())
	docMapping.AddFieldMappingsAt("Title", textFieldMapping)
	docMapping.AddFieldMappingsAt("Provider", textFieldMapping)
	docMapping.AddFieldMappingsAt("Tags", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}

func docID(name string, id int) string {
	return name + "/" + strconv.Itoa(id)
}

// Rebuild replaces the indexed items of each named catalog with the
// source's current contents. It returns the number of items indexed.
func (i *Index) Rebuild(ctx context.Context, src catalog.Source, names []string) (int, error) {
	batch := i.index.NewBatch()
	indexed := 0

	for _, name := range names {
		stale, err := i.docIDs(name)
		if err != nil {
			return 0, err
		}
		for _, id := range stale {
			batch.Delete(id)
		}

		items, err := src.List(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("list %s: %w", name, err)
		}
		for _, it := range items {
			doc := &suggestDoc{
				Catalog:  name,
				ItemID:   it.ID,
				Title:    it.Title,
				Provider: it.Provider,
				Tags:     it.Tags,
			}
			if err := batch.Index(docID(name, it.ID), doc); err != nil {
				return 0, fmt.Errorf("batch index %s: %w", docID(name, it.ID), err)
			}
			indexed++
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}

	return indexed, nil
}

// docIDs lists every indexed document of a catalog
func (i *Index) docIDs(name string) ([]string, error) {
	total, err := i.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(catalogQuery(name), int(total), 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", name, err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func catalogQuery(name string) query.Query {
	q := bleve.NewTermQuery(name)
	q.SetField("Catalog")
	return q
}

// tokenQuery matches one typed token as a prefix of a title, provider or
// tag word, or as a near miss of a title word
func tokenQuery(token string) query.Query {
	var alternatives []query.Query
	for _, field := range []string{"Title", "Provider", "Tags"} {
		pq := bleve.NewPrefixQuery(token)
		pq.SetField(field)
		alternatives = append(alternatives, pq)
	}
	if len(token) >= minFuzzyLen {
		fq := bleve.NewFuzzyQuery(token)
		fq.SetField("Title")
		fq.SetFuzziness(1)
		alternatives = append(alternatives, fq)
	}
	return bleve.NewDisjunctionQuery(alternatives...)
}

// Suggest returns up to limit items whose words start with every token of
// term. An empty catalog name searches all catalogs.
func (i *Index) Suggest(term, catalogName string, limit int) ([]Suggestion, error) {
	tokens := strings.Fields(strings.ToLower(term))
	if len(tokens) == 0 || limit <= 0 {
		return []Suggestion{}, nil
	}

	var must []query.Query
	for _, tok := range tokens {
		must = append(must, tokenQuery(tok))
	}
	if catalogName != "" {
		must = append(must, catalogQuery(catalogName))
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(must...), limit, 0, false)
	req.Fields = []string{"Catalog", "ItemID", "Title"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(res.Hits))
	for _, hit := range res.Hits {
		s := Suggestion{Score: hit.Score}
		if v, ok := hit.Fields["Catalog"].(string); ok {
			s.Catalog = v
		}
		if v, ok := hit.Fields["ItemID"].(float64); ok {
			s.ID = int(v)
		}
		if v, ok := hit.Fields["Title"].(string); ok {
			s.Title = v
		}
		suggestions = append(suggestions, s)
	}

	return suggestions, nil
}

// Count returns the number of documents in the index
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
