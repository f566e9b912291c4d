// engine/engine.go
package engine

import (
	"sync"
	"time"

	"github.com/blockfall/gameserver/block"
	"github.com/blockfall/gameserver/field"
	"github.com/blockfall/gameserver/logger"
	"github.com/blockfall/gameserver/models"
	"github.com/blockfall/gameserver/timer"
)

// pointsTable 一次消除的基础分，按消除行数索引
var pointsTable = map[int]int{1: 40, 2: 100, 3: 300, 4: 1200}

const defaultPoints = 1500

// Engine 单个对局的权威状态。tick 是状态的唯一写入者；属主操作
// （start/stop/configure/add/remove）经同一把锁串行化，方向与旋转指令只
// 进入待处理队列，由下个 tick 消费。
type Engine struct {
	mutex sync.Mutex

	id      string
	ownerID string
	cfg     models.GameConfig
	status  Status

	matrix *field.Matrix
	active *block.Block
	next   *block.Block

	blockCount    int
	lineCount     int
	level         int
	stepCount     int
	players       []models.PlayerState
	currentPlayer int

	gen         *block.Generator
	queue       inputQueue
	task        *timer.Task
	quantum     time.Duration
	gravity     func(level int) time.Duration
	lastGravity time.Time

	listeners []Listener
	pending   []Event
}

// New creates a game in waiting status. quantum is the tick scheduling
// interval; gravityDelay the per-level gravity cadence (fixed here, the
// hook keeps the policy replaceable).
func New(id, ownerID string, cfg models.GameConfig, quantum, gravityDelay time.Duration) *Engine {
	return &Engine{
		id:      id,
		ownerID: ownerID,
		cfg:     cfg,
		status:  StatusWaiting,
		gen:     block.NewGenerator(),
		quantum: quantum,
		gravity: func(int) time.Duration { return gravityDelay },
	}
}

func (e *Engine) ID() string      { return e.id }
func (e *Engine) OwnerID() string { return e.ownerID }

func (e *Engine) Status() Status {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.status
}

// Subscribe registers a listener. Delivery order is subscription order.
func (e *Engine) Subscribe(l Listener) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.listeners = append(e.listeners, l)
}

// AddPlayer appends a player with zero points. Only allowed while waiting;
// duplicate ids are a no-op.
func (e *Engine) AddPlayer(playerID string) bool {
	e.mutex.Lock()
	if e.status != StatusWaiting {
		e.mutex.Unlock()
		return false
	}
	for _, p := range e.players {
		if p.PlayerID == playerID {
			e.mutex.Unlock()
			return false
		}
	}
	e.players = append(e.players, models.PlayerState{PlayerID: playerID})
	e.emit(Event{EventPlayerAdded, map[string]any{"playerId": playerID}})
	e.flushAndUnlock()
	return true
}

// RemovePlayer removes the player regardless of status.
func (e *Engine) RemovePlayer(playerID string) {
	e.mutex.Lock()
	removed := -1
	for i, p := range e.players {
		if p.PlayerID == playerID {
			removed = i
			break
		}
	}
	if removed == -1 {
		e.mutex.Unlock()
		return
	}
	e.players = append(e.players[:removed], e.players[removed+1:]...)
	if removed < e.currentPlayer {
		e.currentPlayer--
	}
	if e.currentPlayer >= len(e.players) {
		e.currentPlayer = 0
	}
	e.emit(Event{EventPlayerRemoved, map[string]any{"playerId": playerID}})
	e.flushAndUnlock()
}

// HasPlayer reports whether the player participates in this game.
func (e *Engine) HasPlayer(playerID string) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, p := range e.players {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

// IsCurrentPlayer reports whether playerID holds the current turn.
func (e *Engine) IsCurrentPlayer(playerID string) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if len(e.players) == 0 {
		return false
	}
	return e.players[e.currentPlayer].PlayerID == playerID
}

// Configure applies cols/rows/name while waiting; silently rejected once
// the game left waiting. Non-positive dimensions are refused.
func (e *Engine) Configure(cfg models.GameConfig) bool {
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return false
	}
	e.mutex.Lock()
	if e.status != StatusWaiting {
		e.mutex.Unlock()
		return false
	}
	e.cfg = cfg
	e.emit(Event{EventConfigUpdated, cfg})
	e.flushAndUnlock()
	return true
}

// Start initializes the matrix, draws the first two blocks and starts the
// recurring tick. Only valid from waiting.
func (e *Engine) Start() bool {
	e.mutex.Lock()
	if e.status != StatusWaiting || e.cfg.Cols <= 0 || e.cfg.Rows <= 0 {
		e.mutex.Unlock()
		return false
	}
	e.matrix = field.New(e.cfg.Cols, e.cfg.Rows)
	e.setStatus(StatusRunning)
	e.emit(Event{EventStarted, map[string]any{"gameId": e.id}})
	e.next = e.gen.Next(e.spawnOrigin())
	e.materialize()
	e.lastGravity = time.Now()
	e.task = timer.NewTask(e.quantum, e.tick)
	e.flushAndUnlock()
	return true
}

// Stop cancels the tick and moves the game to ended. Pending queued
// commands are discarded, never applied to an ended game.
func (e *Engine) Stop() {
	e.mutex.Lock()
	if e.status == StatusEnded {
		e.mutex.Unlock()
		return
	}
	e.end()
	e.flushAndUnlock()
}

// Suspend parks a running game, e.g. when a participant drops mid-game.
// Gravity stops advancing; queued input is drained but not applied.
func (e *Engine) Suspend() bool {
	e.mutex.Lock()
	if !e.status.CanTransition(StatusPaused) {
		e.mutex.Unlock()
		return false
	}
	e.setStatus(StatusPaused)
	e.flushAndUnlock()
	return true
}

// Resume continues a paused or stopping game.
func (e *Engine) Resume() bool {
	e.mutex.Lock()
	if (e.status != StatusPaused && e.status != StatusStopping) ||
		!e.status.CanTransition(StatusRunning) {
		e.mutex.Unlock()
		return false
	}
	e.setStatus(StatusRunning)
	e.lastGravity = time.Now()
	e.flushAndUnlock()
	return true
}

// MoveLeft enqueues a left shift for the next tick.
func (e *Engine) MoveLeft() { e.enqueue(ActionLeft) }

// MoveRight enqueues a right shift for the next tick.
func (e *Engine) MoveRight() { e.enqueue(ActionRight) }

// MoveDown enqueues a down shift for the next tick.
func (e *Engine) MoveDown() { e.enqueue(ActionDown) }

// Rotate enqueues a clockwise rotation for the next tick.
func (e *Engine) Rotate() { e.enqueue(ActionRotate) }

func (e *Engine) enqueue(a Action) {
	if e.Status() == StatusEnded {
		return
	}
	e.queue.push(a)
}

// Players returns a copy of the per-game scoreboard.
func (e *Engine) Players() []models.PlayerState {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	players := make([]models.PlayerState, len(e.players))
	copy(players, e.players)
	return players
}

// Summary returns the lobby view of this game.
func (e *Engine) Summary() models.GameSummary {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return models.GameSummary{
		ID:          e.id,
		Name:        e.cfg.Name,
		Status:      e.status.String(),
		OwnerID:     e.ownerID,
		PlayerCount: len(e.players),
	}
}

// Snapshot returns a deep copy of the game state; holders never observe
// mid-mutation values.
func (e *Engine) Snapshot() models.GameSnapshot {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.snapshot()
}

// --- tick ---

// tick drains the pending queue fully in FIFO order, or applies one
// gravity step once the per-level delay elapsed. Stopping and paused
// games still drain but never advance.
func (e *Engine) tick() {
	e.mutex.Lock()
	if e.status == StatusEnded {
		e.mutex.Unlock()
		return
	}
	if actions := e.queue.drain(); len(actions) > 0 {
		for _, a := range actions {
			e.apply(a)
		}
		e.emit(Event{EventLooped, e.snapshot()})
	} else if e.status == StatusRunning && time.Since(e.lastGravity) > e.gravity(e.level) {
		e.apply(ActionDown)
		e.lastGravity = time.Now()
		e.emit(Event{EventLooped, e.snapshot()})
	}
	e.flushAndUnlock()
}

// apply executes one queued action. Caller holds the mutex.
func (e *Engine) apply(a Action) {
	if e.status != StatusRunning {
		return
	}
	if e.active == nil {
		// 没有活动方块时旋转直接丢弃，方向键先落子且不消耗本次方向
		if a == ActionRotate {
			return
		}
		e.materialize()
		return
	}
	switch a {
	case ActionRotate:
		e.rotate()
	case ActionLeft:
		e.shift(-1, 0, false)
	case ActionRight:
		e.shift(1, 0, false)
	case ActionDown:
		e.shift(0, 1, true)
	default:
		// 非法指令直接忽略
	}
}

func (e *Engine) shift(dx, dy int, isDown bool) {
	e.matrix.Erase(e.active)
	candidate := e.active.Shifted(dx, dy)
	if e.matrix.IsBlocked(candidate) {
		e.matrix.Draw(e.active)
		if isDown {
			e.lock()
		}
		return
	}
	e.active = candidate
	e.matrix.Draw(e.active)
	e.stepCount++
}

func (e *Engine) rotate() {
	e.matrix.Erase(e.active)
	candidate := e.active.RotatedCW()
	if e.matrix.IsBlocked(candidate) {
		e.matrix.Draw(e.active)
		return
	}
	e.active = candidate
	e.matrix.Draw(e.active)
	e.stepCount++
}

// lock makes the active block permanent occupancy, evaluates line clears
// and passes the turn.
func (e *Engine) lock() {
	e.active = nil
	e.clearLines()
	if len(e.players) > 0 {
		e.currentPlayer = (e.currentPlayer + 1) % len(e.players)
	}
	e.emit(Event{EventRoundCompleted, map[string]any{
		"blockCount":         e.blockCount,
		"stepCount":          e.stepCount,
		"currentPlayerIndex": e.currentPlayer,
	}})
}

// materialize promotes nextBlock to activeBlock and draws a fresh
// nextBlock from the bag. The new block is drawn onto the matrix even when
// it already collides; that collision means the board topped out and the
// game ends.
func (e *Engine) materialize() {
	if e.next == nil {
		e.next = e.gen.Next(e.spawnOrigin())
	}
	e.active = e.next
	e.next = e.gen.Next(e.spawnOrigin())
	e.blockCount++

	toppedOut := e.matrix.IsBlocked(e.active)
	e.matrix.Draw(e.active)

	e.emit(Event{EventBlockCreated, e.active.View()})
	e.emit(Event{EventNextBlockCreated, e.next.View()})

	if toppedOut {
		logger.Log.Infof("game %s topped out after %d blocks", e.id, e.blockCount)
		e.end()
	}
}

func (e *Engine) clearLines() {
	rows := e.matrix.CompleteRows()
	count := len(rows)
	if count == 0 {
		return
	}
	e.lineCount += count
	e.level = e.lineCount / 10

	points, ok := pointsTable[count]
	if !ok {
		points = defaultPoints
	}
	points *= e.level + 1

	scorer := ""
	if len(e.players) > 0 {
		e.players[e.currentPlayer].Points += points
		scorer = e.players[e.currentPlayer].PlayerID
	}
	e.matrix.Collapse(rows)

	e.emit(Event{EventLinesCompleted, map[string]any{
		"count":     count,
		"rows":      rows,
		"points":    points,
		"playerId":  scorer,
		"lineCount": e.lineCount,
		"level":     e.level,
	}})
}

// end cancels the tick and moves to ended. Caller holds the mutex.
func (e *Engine) end() {
	if e.task != nil {
		e.task.Stop()
		e.task = nil
	}
	e.queue.clear()
	e.setStatus(StatusEnded)
	e.emit(Event{EventStopped, map[string]any{"gameId": e.id}})
}

func (e *Engine) setStatus(next Status) {
	if !e.status.CanTransition(next) {
		logger.Log.Warnf("game %s: illegal transition %s -> %s", e.id, e.status, next)
		return
	}
	e.status = next
	e.emit(Event{EventStatusChanged, map[string]any{"status": next.String()}})
}

func (e *Engine) spawnOrigin() models.Vec {
	return models.Vec{X: e.cfg.Cols/2 - 1, Y: 0}
}

func (e *Engine) snapshot() models.GameSnapshot {
	snap := models.GameSnapshot{
		ID:                 e.id,
		OwnerID:            e.ownerID,
		Config:             e.cfg,
		Status:             e.status.String(),
		ActiveBlock:        e.active.View(),
		NextBlock:          e.next.View(),
		BlockCount:         e.blockCount,
		LineCount:          e.lineCount,
		Level:              e.level,
		StepCount:          e.stepCount,
		Players:            make([]models.PlayerState, len(e.players)),
		CurrentPlayerIndex: e.currentPlayer,
	}
	copy(snap.Players, e.players)
	if e.matrix != nil {
		snap.Matrix = e.matrix.Cells()
	}
	return snap
}

// --- event plumbing ---

// emit appends to the pending list; events reach listeners only after the
// mutex is released so a listener can never re-enter mid-mutation state.
func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

func (e *Engine) flushAndUnlock() {
	events := e.pending
	e.pending = nil
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	id := e.id
	e.mutex.Unlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(id, ev)
		}
	}
}
