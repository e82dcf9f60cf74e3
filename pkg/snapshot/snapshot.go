// Package snapshot stores serialized render surfaces.
//
// A Snapshot captures the HTML of a mounted region together with the
// mutation log that produced it. Stores persist snapshots under generated
// ids: FileStore on the local filesystem and S3Store in an S3 bucket.
package snapshot

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
)

// Snapshot is a serialized surface region.
type Snapshot struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	HTML      string            `json:"html"`
	Mutations []memdom.Mutation `json:"mutations,omitempty"`
}

// Store persists snapshots.
type Store interface {
	// Save stores s and returns its id. An empty s.ID is generated.
	Save(ctx context.Context, s *Snapshot) (string, error)

	// Load returns the snapshot with the given id.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns the stored ids in lexical order.
	List(ctx context.Context) ([]string, error)
}

// Capture serializes the children of root along with the document's
// mutation log.
func Capture(doc *memdom.Document, root *memdom.Element, name string) *Snapshot {
	var b strings.Builder
	for _, c := range root.Children() {
		_ = memdom.WriteHTML(&b, c, memdom.HTMLOptions{Pretty: true})
	}
	return &Snapshot{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		HTML:      b.String(),
		Mutations: doc.Mutations(),
	}
}

// NewID returns a fresh snapshot id.
func NewID() string {
	return uuid.NewString()
}

func prepare(s *Snapshot) ([]byte, error) {
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, vterrors.New(vterrors.CodeSnapshotFailed).WithSubject(s.ID).Wrap(err)
	}
	return data, nil
}

func decode(id string, data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, vterrors.New(vterrors.CodeSnapshotFailed).WithSubject(id).Wrap(err)
	}
	return &s, nil
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
