package trailblog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

const bleveFile = "trailblog.bleve"

// SearchIndex is a bleve full-text index over posts. It is kept in step
// with the store by the Blog write paths; it is not a source of truth.
type SearchIndex struct {
	index bleve.Index
}

// searchDoc is the shape indexed per post.
type searchDoc struct {
	State              string `json:"state"`
	Subject            string `json:"subject"`
	Content            string `json:"content"`
	SubjectTranslation string `json:"subjectTranslation"`
	ContentTranslation string `json:"contentTranslation"`
}

// OpenSearchIndex opens or creates the search index under dataDir.
func OpenSearchIndex(dataDir string) (*SearchIndex, error) {
	path := filepath.Join(dataDir, bleveFile)

	index, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		index, err = bleve.NewUsing(path, defineSearchMapping(),
			bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create search index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	return &SearchIndex{index: index}, nil
}

func defineSearchMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	docMapping.AddFieldMappingsAt("state", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("subject", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("content", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("subjectTranslation", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("contentTranslation", bleve.NewTextFieldMapping())

	indexMapping.AddDocumentMapping("post", docMapping)
	return indexMapping
}

// Index adds or replaces the post in the index. Soft-deleted posts are
// removed instead; they should never appear in search results.
func (si *SearchIndex) Index(post *Post) error {
	id := searchDocID(post.State, post.ID)
	if post.Deleted {
		return si.index.Delete(id)
	}

	return si.index.Index(id, searchDoc{
		State:              post.State,
		Subject:            post.Subject,
		Content:            post.Content,
		SubjectTranslation: post.SubjectTranslation,
		ContentTranslation: post.ContentTranslation,
	})
}

// Delete removes a post from the index.
func (si *SearchIndex) Delete(state string, id int64) error {
	return si.index.Delete(searchDocID(state, id))
}

// Query returns the (state, id) pairs of the posts matching the query
// string, best match first.
func (si *SearchIndex) Query(q string, limit int) ([]SearchHit, error) {
	query := bleve.NewQueryStringQuery(q)
	request := bleve.NewSearchRequestOptions(query, limit, 0, false)

	result, err := si.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("error searching posts: %w", err)
	}

	hits := make([]SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		state, id, err := parseSearchDocID(hit.ID)
		if err != nil {
			continue
		}
		hits = append(hits, SearchHit{State: state, ID: id})
	}
	return hits, nil
}

// Close closes the index.
func (si *SearchIndex) Close() error {
	return si.index.Close()
}

// SearchHit identifies one matching post.
type SearchHit struct {
	State string
	ID    int64
}

// SearchPosts runs a full-text query and resolves the hits against the
// store. Posts deleted since they were indexed are dropped.
func (b *Blog) SearchPosts(ctx context.Context, q string, limit int) ([]*Post, error) {
	if b.search == nil {
		return nil, errors.New("search is not configured")
	}

	hits, err := b.search.Query(q, limit)
	if err != nil {
		return nil, err
	}

	posts := make([]*Post, 0, len(hits))
	for _, hit := range hits {
		post, err := b.store.GetByID(ctx, hit.State, hit.ID)
		if errors.Is(err, ErrPostNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if post.Deleted {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// ReindexAll rebuilds the search index from the store, batch by batch.
func (b *Blog) ReindexAll(ctx context.Context) (int, error) {
	if b.search == nil {
		return 0, errors.New("search is not configured")
	}

	count := 0
	cursor := ""
	for {
		posts, next, err := b.store.Scan(ctx, cursor, 200)
		if err != nil {
			return count, fmt.Errorf("error scanning posts for reindex: %w", err)
		}

		for _, post := range posts {
			if err := b.search.Index(post); err != nil {
				return count, fmt.Errorf("error indexing post %s/%d: %w", post.State, post.ID, err)
			}
			if !post.Deleted {
				count++
			}
		}

		if next == "" {
			return count, nil
		}
		cursor = next
	}
}

func searchDocID(state string, id int64) string {
	return fmt.Sprintf("%s/%d", state, id)
}

func parseSearchDocID(docID string) (string, int64, error) {
	state, idPart, ok := strings.Cut(docID, "/")
	if !ok {
		return "", 0, fmt.Errorf("malformed search doc id: %q", docID)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed search doc id: %q", docID)
	}
	return state, id, nil
}
