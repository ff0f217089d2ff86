package testutil

import (
	"errors"
	"math"
	"slices"
	"sync"

	"github.com/udisondev/skirmish/internal/model"
)

// ErrSimulated is a sentinel error for testing error handling paths
var ErrSimulated = errors.New("simulated error for testing")

// Dummy: простая цель для тестов: Damageable + Impulsable + Transform.
type Dummy struct {
	mu        sync.Mutex
	id        model.EntityID
	pos       model.Vec3
	forward   model.Vec3
	health    float64
	maxHealth float64
	hits      []float64
	impulses  []model.Vec3
}

// NewDummy создаёт цель с полным здоровьем, смотрящую в +Z.
func NewDummy(id model.EntityID, pos model.Vec3, maxHealth float64) *Dummy {
	return &Dummy{
		id:        id,
		pos:       pos,
		forward:   model.Vec3{Z: 1},
		health:    maxHealth,
		maxHealth: maxHealth,
	}
}

func (d *Dummy) ID() model.EntityID { return d.id }

func (d *Dummy) TakeDamage(amount float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.health <= 0 {
		return
	}
	d.hits = append(d.hits, amount)
	d.health = max(d.health-amount, 0)
}

func (d *Dummy) CurrentHealth() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.health
}

func (d *Dummy) MaxHealth() float64 { return d.maxHealth }

func (d *Dummy) IsDead() bool { return d.CurrentHealth() <= 0 }

func (d *Dummy) Position() model.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pos
}

func (d *Dummy) SetPosition(p model.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pos = p
}

func (d *Dummy) Forward() model.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.forward
}

func (d *Dummy) SetForward(dir model.Vec3) {
	dir = dir.Flat().Normalize()
	if dir.IsZero() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forward = dir
}

func (d *Dummy) ApplyImpulse(impulse model.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.impulses = append(d.impulses, impulse)
}

// Hits возвращает копию списка полученного урона.
func (d *Dummy) Hits() []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.hits)
}

// Impulses возвращает копию списка полученных импульсов.
func (d *Dummy) Impulses() []model.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.impulses)
}

// FakePathfinder записывает запросы и ничего не двигает сам.
// Remaining/Pending задаются тестом.
type FakePathfinder struct {
	mu           sync.Mutex
	Destinations []model.Vec3
	Remaining    float64
	Pending      bool
	Stopped      bool
	Speed        float64
	StoppingDist float64
	Warps        []model.Vec3
	Reject       bool // SetDestination возвращает false
}

// NewFakePathfinder создаёт pathfinder без пути (RemainingDistance = +Inf).
func NewFakePathfinder() *FakePathfinder {
	return &FakePathfinder{Remaining: math.Inf(1)}
}

func (f *FakePathfinder) SetDestination(p model.Vec3) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Reject {
		return false
	}
	f.Destinations = append(f.Destinations, p)
	return true
}

// LastDestination возвращает последнюю запрошенную точку.
func (f *FakePathfinder) LastDestination() (model.Vec3, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Destinations) == 0 {
		return model.Vec3{}, false
	}
	return f.Destinations[len(f.Destinations)-1], true
}

func (f *FakePathfinder) RemainingDistance() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Pending {
		return math.Inf(1)
	}
	return f.Remaining
}

func (f *FakePathfinder) IsPathPending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Pending
}

func (f *FakePathfinder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stopped = true
}

func (f *FakePathfinder) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stopped = false
}

func (f *FakePathfinder) IsStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Stopped
}

func (f *FakePathfinder) SamplePosition(p model.Vec3, _ float64) (model.Vec3, bool) {
	return p, true
}

func (f *FakePathfinder) Warp(p model.Vec3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Warps = append(f.Warps, p)
}

func (f *FakePathfinder) SetSpeed(speed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Speed = speed
}

func (f *FakePathfinder) SetStoppingDistance(d float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StoppingDist = d
}

type worldEntry struct {
	obj   model.Damageable
	layer model.LayerMask
}

// FakeWorld: линейный WorldQuery без пространственного индекса.
// BlockSight делает любой Raycast с LayerObstacle попаданием в стену.
type FakeWorld struct {
	mu         sync.Mutex
	entries    []worldEntry
	BlockSight bool
	Overlaps   int
	Raycasts   int
}

// NewFakeWorld создаёт пустой мир.
func NewFakeWorld() *FakeWorld {
	return &FakeWorld{}
}

// Add регистрирует объект на слое.
func (w *FakeWorld) Add(obj model.Damageable, layer model.LayerMask) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, worldEntry{obj: obj, layer: layer})
}

func (w *FakeWorld) OverlapSphere(center model.Vec3, radius float64, mask model.LayerMask) []model.Damageable {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Overlaps++

	var out []model.Damageable
	for _, e := range w.entries {
		if !mask.Has(e.layer) || e.obj.IsDead() {
			continue
		}
		if e.obj.Position().Distance(center) <= radius {
			out = append(out, e.obj)
		}
	}
	return out
}

func (w *FakeWorld) Raycast(origin, dir model.Vec3, maxDist float64, mask model.LayerMask) (model.RaycastHit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Raycasts++

	if w.BlockSight && mask.Has(model.LayerObstacle) {
		return model.RaycastHit{Point: origin, Distance: 0, Layer: model.LayerObstacle}, true
	}

	dir = dir.Normalize()
	var best model.RaycastHit
	hit := false
	for _, e := range w.entries {
		if !mask.Has(e.layer) || e.obj.IsDead() {
			continue
		}
		to := e.obj.Position().Sub(origin)
		along := to.Dot(dir)
		if along < 0 || along > maxDist {
			continue
		}
		// Попадание, если цель в пределах 0.5 от луча.
		if to.Sub(dir.Scale(along)).Len() > 0.5 {
			continue
		}
		if !hit || along < best.Distance {
			best = model.RaycastHit{Point: origin.Add(dir.Scale(along)), Distance: along, Entity: e.obj, Layer: e.layer}
			hit = true
		}
	}
	return best, hit
}

// RecordingPresenter записывает все cue. Если Err != nil, Trigger возвращает его,
// если PanicOn совпадает с cue, паникует.
type RecordingPresenter struct {
	mu      sync.Mutex
	cues    []string
	Err     error
	PanicOn string
	Calls   int
}

// NewRecordingPresenter создаёт presenter без ошибок.
func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{}
}

func (p *RecordingPresenter) Trigger(cue string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.PanicOn != "" && cue == p.PanicOn {
		panic("presenter backend crashed")
	}
	if p.Err != nil {
		return p.Err
	}
	p.cues = append(p.cues, cue)
	return nil
}

// Cues возвращает копию записанных cue.
func (p *RecordingPresenter) Cues() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.cues)
}

// Count возвращает, сколько раз был записан cue.
func (p *RecordingPresenter) Count(cue string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.cues {
		if c == cue {
			n++
		}
	}
	return n
}

// EliminationLog записывает уведомления об удалении.
type EliminationLog struct {
	mu  sync.Mutex
	ids []model.EntityID
}

func (l *EliminationLog) NotifyEliminated(id model.EntityID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
}

// IDs возвращает копию списка.
func (l *EliminationLog) IDs() []model.EntityID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.ids)
}
