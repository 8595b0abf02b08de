package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/paulmach/orb"
)

const subscriberBuffer = 8

// Workspace is the single owner of the current map and draw state. All reads
// and mutations go through its mutex; store changes rebuild the annotations
// and push a snapshot to live subscribers before the call returns.
type Workspace struct {
	mu          sync.Mutex
	store       *GeometryStore
	mode        Interaction
	annotations *AnnotationManager
	metrics     *Metrics

	subs    map[int]chan models.AnnotationSnapshot
	nextSub int
}

func NewWorkspace(metrics *Metrics) *Workspace {
	w := &Workspace{
		store:       NewGeometryStore(),
		annotations: NewAnnotationManager(),
		metrics:     metrics,
		subs:        make(map[int]chan models.AnnotationSnapshot),
	}
	w.store.OnChange(func() {
		w.annotations.Rebuild(w.store.Features())
		w.publish()
	})
	return w
}

func (w *Workspace) Features() []models.Feature {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Features()
}

func (w *Workspace) Feature(id string) (models.Feature, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Get(id)
}

func (w *Workspace) State() ModeState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode.State()
}

func (w *Workspace) Labels() []models.Label {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.annotations.Labels()
}

func (w *Workspace) Table() []models.TableSection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.annotations.Table()
}

func (w *Workspace) Snapshot() models.AnnotationSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Workspace) snapshot() models.AnnotationSnapshot {
	return models.AnnotationSnapshot{
		Type:     "annotations",
		Mode:     w.mode.mode.String(),
		Labels:   w.annotations.Labels(),
		Preview:  w.annotations.Preview(),
		Sections: w.annotations.Table(),
	}
}

func (w *Workspace) StartDraw(kind models.GeometryKind) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.StartDraw(kind); err != nil {
		return err
	}
	w.annotations.ClearPreview()
	w.publish()
	return nil
}

// PreviewDraw refreshes the labels of the uncommitted feature.
func (w *Workspace) PreviewDraw(vertices []orb.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	kind, err := w.mode.DrawingKind("preview draw")
	if err != nil {
		return err
	}
	w.annotations.SetPreview(kind, vertices)
	w.publish()
	return nil
}

// EndDraw commits the drawn feature. On invalid geometry the draw stays open.
func (w *Workspace) EndDraw(vertices []orb.Point) (models.Feature, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kind, err := w.mode.DrawingKind("end draw")
	if err != nil {
		return models.Feature{}, err
	}
	if _, err := NormalizeFeature("", kind, vertices); err != nil {
		return models.Feature{}, err
	}
	_ = w.mode.FinishDraw()
	w.annotations.ClearPreview()
	f, err := w.store.Add(models.Feature{Kind: kind, Vertices: vertices})
	if err != nil {
		return models.Feature{}, err
	}
	w.metrics.Mutation("add", w.store.Len())
	return f, nil
}

// CancelDraw discards the in-progress feature; the store is not touched.
func (w *Workspace) CancelDraw() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.CancelDraw(); err != nil {
		return err
	}
	w.annotations.ClearPreview()
	w.publish()
	return nil
}

func (w *Workspace) StartModify(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.RequireIdle("start modify"); err != nil {
		return err
	}
	if _, err := w.store.Get(id); err != nil {
		return err
	}
	if err := w.mode.StartModify(id); err != nil {
		return err
	}
	w.publish()
	return nil
}

func (w *Workspace) EndModify(vertices []orb.Point) (models.Feature, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, err := w.mode.ModifyingID("end modify")
	if err != nil {
		return models.Feature{}, err
	}
	// idle before the store hook publishes, so subscribers see one snapshot
	_ = w.mode.FinishModify()
	f, err := w.store.Update(id, vertices)
	if err != nil {
		_ = w.mode.StartModify(id)
		return models.Feature{}, err
	}
	w.metrics.Mutation("update", w.store.Len())
	return f, nil
}

func (w *Workspace) CancelModify() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.CancelModify(); err != nil {
		return err
	}
	w.publish()
	return nil
}

func (w *Workspace) Remove(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.RequireIdle("remove feature"); err != nil {
		return err
	}
	if err := w.store.Remove(id); err != nil {
		return err
	}
	w.metrics.Mutation("remove", w.store.Len())
	return nil
}

func (w *Workspace) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.RequireIdle("clear"); err != nil {
		return err
	}
	w.store.RemoveAll()
	w.metrics.Mutation("clear", 0)
	return nil
}

// ReplaceAll swaps in a whole feature set, used by import and drawing load.
func (w *Workspace) ReplaceAll(op string, features []models.Feature) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.RequireIdle(op); err != nil {
		return err
	}
	if err := w.store.Replace(features); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	w.metrics.Mutation(op, w.store.Len())
	return nil
}

// AppendAll adds features in order; nothing is added if any is invalid.
func (w *Workspace) AppendAll(op string, features []models.Feature) ([]models.Feature, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.mode.RequireIdle(op); err != nil {
		return nil, err
	}
	merged := w.store.Features()
	start := len(merged)
	for _, f := range features {
		f.ID = ""
		merged = append(merged, f)
	}
	if err := w.store.Replace(merged); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w.metrics.Mutation(op, w.store.Len())
	return w.store.Features()[start:], nil
}

// Subscribe registers a live listener. The current snapshot is delivered
// first. A subscriber that falls behind is dropped and its channel closed.
func (w *Workspace) Subscribe() (<-chan models.AnnotationSnapshot, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan models.AnnotationSnapshot, subscriberBuffer)
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	ch <- w.snapshot()
	return ch, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
		}
	}
}

func (w *Workspace) publish() {
	if len(w.subs) == 0 {
		return
	}
	snap := w.snapshot()
	for id, ch := range w.subs {
		select {
		case ch <- snap:
		default:
			log.Printf("dropping slow live subscriber %d", id)
			delete(w.subs, id)
			close(ch)
		}
	}
}
