package broadcast

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/blockfall/gameserver/engine"
	"github.com/blockfall/gameserver/logger"
	"github.com/blockfall/gameserver/models"
	"github.com/blockfall/gameserver/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// MockConnection captures delivered frames.
type MockConnection struct {
	frames []string
}

func (m *MockConnection) Send(frame string) error {
	m.frames = append(m.frames, frame)
	return nil
}
func (m *MockConnection) ReadFrame() (string, error) { return "", nil }
func (m *MockConnection) Close() error               { return nil }
func (m *MockConnection) RemoteAddr() net.Addr       { return &net.TCPAddr{} }

func newHubFixture() (*Hub, *session.Manager, *engine.Registry) {
	sessions := session.NewManager()
	games := engine.NewRegistry(time.Hour, 200*time.Millisecond)
	return NewHub(sessions, games), sessions, games
}

func addSession(sessions *session.Manager, id string) (*session.Session, *MockConnection) {
	conn := &MockConnection{}
	sess := session.NewSession(id, conn)
	sessions.Add(sess)
	return sess, conn
}

func TestToGameDeliversToGameScopeOnly(t *testing.T) {
	hub, sessions, games := newHubFixture()
	eng := games.Create("p1", models.GameConfig{Cols: 10, Rows: 20})

	inGame, inGameConn := addSession(sessions, "s1")
	other, otherConn := addSession(sessions, "s2")
	sessions.SubscribeGame(inGame, eng.ID())
	sessions.SubscribeGame(other, "some-other-game")

	if err := hub.ToGame(eng.ID(), "looped@{}"); err != nil {
		t.Fatalf("ToGame failed: %v", err)
	}
	if len(inGameConn.frames) != 1 {
		t.Errorf("expected 1 frame for the game session, got %d", len(inGameConn.frames))
	}
	if len(otherConn.frames) != 0 {
		t.Errorf("expected no frames for the other session, got %d", len(otherConn.frames))
	}
}

func TestToGameNoWatchersIsNoOp(t *testing.T) {
	hub, _, games := newHubFixture()
	eng := games.Create("p1", models.GameConfig{Cols: 10, Rows: 20})

	if err := hub.ToGame(eng.ID(), "looped@{}"); err != nil {
		t.Errorf("a game without watchers should broadcast silently, got %v", err)
	}
}

func TestToGameUnknownGame(t *testing.T) {
	hub, _, _ := newHubFixture()
	if err := hub.ToGame("missing", "looped@{}"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}

func TestGameNotFoundNotification(t *testing.T) {
	hub, sessions, _ := newHubFixture()
	sess, conn := addSession(sessions, "s1")

	hub.GameNotFound(sess, "missing")

	if len(conn.frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(conn.frames))
	}
	if !strings.HasPrefix(conn.frames[0], "game_not_found@") {
		t.Errorf("unexpected frame %q", conn.frames[0])
	}
	if !strings.Contains(conn.frames[0], "missing") {
		t.Errorf("notification should name the game id: %q", conn.frames[0])
	}
}

func TestPushGamesList(t *testing.T) {
	hub, sessions, games := newHubFixture()
	games.Create("p1", models.GameConfig{Cols: 10, Rows: 20, Name: "one"})

	lobby, lobbyConn := addSession(sessions, "s1")
	_, quietConn := addSession(sessions, "s2")
	sessions.SubscribeLobby(lobby)

	hub.PushGamesList()

	if len(lobbyConn.frames) != 1 {
		t.Fatalf("expected 1 frame for the lobby session, got %d", len(lobbyConn.frames))
	}
	if !strings.HasPrefix(lobbyConn.frames[0], "games_list@") {
		t.Errorf("unexpected frame %q", lobbyConn.frames[0])
	}
	if !strings.Contains(lobbyConn.frames[0], "one") {
		t.Errorf("games list should carry the game name: %q", lobbyConn.frames[0])
	}
	if len(quietConn.frames) != 0 {
		t.Errorf("non-lobby session should receive nothing, got %d frames", len(quietConn.frames))
	}
}

func TestGameEventEncodesFrame(t *testing.T) {
	hub, sessions, games := newHubFixture()
	eng := games.Create("p1", models.GameConfig{Cols: 10, Rows: 20})

	sess, conn := addSession(sessions, "s1")
	sessions.SubscribeGame(sess, eng.ID())

	err := hub.GameEvent(eng.ID(), engine.Event{
		Name:    engine.EventPlayerAdded,
		Payload: map[string]any{"playerId": "p2"},
	})
	if err != nil {
		t.Fatalf("GameEvent failed: %v", err)
	}
	if len(conn.frames) != 1 || !strings.HasPrefix(conn.frames[0], "playerAdded@") {
		t.Errorf("unexpected frames %v", conn.frames)
	}
}
