package lobby

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uno-online/server/internal/game"
	"github.com/uno-online/server/internal/netconn"
	"github.com/uno-online/server/internal/protocol"
)

// startServer boots a full server on an ephemeral port and returns its
// address. Everything runs in-process over loopback TCP.
func startServer(t *testing.T) string {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	seq := protocol.NewSequence()
	registry := netconn.NewRegistry()
	sessions := game.NewStore()
	rooms := NewRoomStore()
	handler := NewHandler(logger, seq, registry, rooms, sessions)
	srv := netconn.NewServer(registry, handler, seq, logger, 50*time.Millisecond, time.Second)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(srv.Shutdown)
	return l.Addr().String()
}

// client speaks the newline-delimited JSON protocol like a real peer would.
type client struct {
	t    *testing.T
	conn net.Conn
	sc   *bufio.Scanner
	seq  *protocol.Sequence
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn, sc: bufio.NewScanner(conn), seq: protocol.NewSequence()}
}

func (c *client) send(method protocol.Method, payload interface{}) {
	c.t.Helper()
	env, err := protocol.NewEnvelope(c.seq, method, payload)
	require.NoError(c.t, err)
	data, err := env.Encode()
	require.NoError(c.t, err)
	_, err = c.conn.Write(append(data, '\n'))
	require.NoError(c.t, err)
}

func (c *client) sendRaw(line string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(c.t, err)
}

// next reads exactly one message.
func (c *client) next() *protocol.Envelope {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.True(c.t, c.sc.Scan(), "read failed: %v", c.sc.Err())
	env, err := protocol.Decode(c.sc.Bytes())
	require.NoError(c.t, err)
	return env
}

// expect reads until a message with the given method arrives, skipping
// unrelated pushes such as lobby updates.
func (c *client) expect(method protocol.Method) *protocol.Envelope {
	c.t.Helper()
	for i := 0; i < 20; i++ {
		env := c.next()
		if env.Method == method {
			return env
		}
	}
	c.t.Fatalf("no %s within 20 messages", method)
	return nil
}

func (c *client) createRoom(name, username string) uuid.UUID {
	c.t.Helper()
	c.send(protocol.MethodCreateRoom, protocol.CreateRoomRequest{RoomName: name, Username: username})
	env := c.expect(protocol.MethodRoomCreatedSuccess)
	var resp protocol.CreateRoomResponse
	require.NoError(c.t, env.DecodePayload(&resp))
	require.True(c.t, resp.Success)
	return resp.RoomID
}

func (c *client) joinRoom(roomID uuid.UUID, username string) {
	c.t.Helper()
	c.send(protocol.MethodJoinRoomRequest, protocol.JoinRoomRequest{RoomID: roomID, Username: username})
	env := c.expect(protocol.MethodJoinRoomResponse)
	var resp protocol.JoinRoomResponse
	require.NoError(c.t, env.DecodePayload(&resp))
	require.True(c.t, resp.Success)
}

func decodeError(t *testing.T, env *protocol.Envelope) protocol.ErrorPayload {
	t.Helper()
	var p protocol.ErrorPayload
	require.NoError(t, env.DecodePayload(&p))
	return p
}

func playerIDByName(t *testing.T, update protocol.LobbyUpdate, name string) uuid.UUID {
	t.Helper()
	for _, p := range update.Players {
		if p.Username == name {
			return p.PlayerID
		}
	}
	t.Fatalf("player %s not in lobby update", name)
	return uuid.Nil
}

func TestPingPong(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr)

	c.send(protocol.MethodPing, nil)
	env := c.next()
	assert.Equal(t, protocol.MethodPong, env.Method)
}

func TestUnknownMethod(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr)

	c.send(protocol.Method("DANCE"), nil)
	p := decodeError(t, c.expect(protocol.MethodError))
	assert.Equal(t, "UNKNOWN_METHOD", p.Code)
}

func TestMalformedLineKeepsConnection(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr)

	c.sendRaw("this is not an envelope")
	p := decodeError(t, c.expect(protocol.MethodError))
	assert.Equal(t, "BAD_REQUEST", p.Code)

	c.send(protocol.MethodPing, nil)
	assert.Equal(t, protocol.MethodPong, c.next().Method)
}

func TestCreateAndListRooms(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	bob := dial(t, addr)

	alice.createRoom("casual", "alice")

	bob.send(protocol.MethodGetRooms, nil)
	env := bob.expect(protocol.MethodRoomsList)
	var list protocol.RoomsList
	require.NoError(t, env.DecodePayload(&list))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, "casual", list.Rooms[0].RoomName)
	assert.Equal(t, 1, list.Rooms[0].CurrentPlayers)
	assert.Equal(t, "alice", list.Rooms[0].CreatorName)
	assert.Equal(t, protocol.RoomWaiting, list.Rooms[0].Status)
	assert.False(t, list.Rooms[0].HasPassword)
}

func TestJoinRoomErrors(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	bob := dial(t, addr)

	bob.send(protocol.MethodJoinRoomRequest, protocol.JoinRoomRequest{RoomID: uuid.New()})
	assert.Equal(t, "ROOM_NOT_FOUND", decodeError(t, bob.expect(protocol.MethodError)).Code)

	alice.send(protocol.MethodCreateRoom, protocol.CreateRoomRequest{RoomName: "locked", Username: "alice", Password: "sekrit"})
	env := alice.expect(protocol.MethodRoomCreatedSuccess)
	var resp protocol.CreateRoomResponse
	require.NoError(t, env.DecodePayload(&resp))

	bob.send(protocol.MethodJoinRoomRequest, protocol.JoinRoomRequest{RoomID: resp.RoomID, Password: "wrong"})
	assert.Equal(t, "INVALID_PASSWORD", decodeError(t, bob.expect(protocol.MethodError)).Code)

	bob.send(protocol.MethodJoinRoomRequest, protocol.JoinRoomRequest{RoomID: resp.RoomID, Password: "sekrit", Username: "bob"})
	bob.expect(protocol.MethodJoinRoomResponse)
}

func TestStartGameRequiresTwoPlayers(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	alice.createRoom("solo", "alice")

	alice.send(protocol.MethodStartGame, nil)
	assert.Equal(t, "NOT_ENOUGH_PLAYERS", decodeError(t, alice.expect(protocol.MethodError)).Code)
}

func TestStartGameOnlyCreator(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	bob := dial(t, addr)

	roomID := alice.createRoom("duel", "alice")
	bob.joinRoom(roomID, "bob")

	bob.send(protocol.MethodStartGame, nil)
	assert.Equal(t, "NOT_CREATOR", decodeError(t, bob.expect(protocol.MethodError)).Code)
}

func TestFullGameFlow(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	bob := dial(t, addr)

	roomID := alice.createRoom("table", "alice")
	bob.joinRoom(roomID, "bob")

	// The roster push after bob joins maps usernames to server identities.
	var roster protocol.LobbyUpdate
	for {
		env := alice.expect(protocol.MethodLobbyUpdate)
		require.NoError(t, env.DecodePayload(&roster))
		if len(roster.Players) == 2 {
			break
		}
	}
	aliceID := playerIDByName(t, roster, "alice")
	bobID := playerIDByName(t, roster, "bob")

	alice.send(protocol.MethodStartGame, nil)
	alice.expect(protocol.MethodOk)

	// Everyone gets a private hand and the public state.
	var aliceHand, bobHand protocol.HandUpdate
	require.NoError(t, alice.expect(protocol.MethodHandUpdate).DecodePayload(&aliceHand))
	require.NoError(t, bob.expect(protocol.MethodHandUpdate).DecodePayload(&bobHand))
	assert.Len(t, aliceHand.Hand, 7)
	assert.Len(t, bobHand.Hand, 7)

	var snap game.Snapshot
	require.NoError(t, bob.expect(protocol.MethodGameState).DecodePayload(&snap))
	assert.Equal(t, game.StateInProgress, snap.State)
	require.Len(t, snap.Players, 2)
	for _, p := range snap.Players {
		assert.Equal(t, 7, p.CardCount, "public view shows counts, not cards")
	}

	// Identify the seats and let the wrong one try to act first.
	current, waiting := alice, bob
	if snap.CurrentPlayerID == bobID {
		current, waiting = bob, alice
	} else {
		require.Equal(t, aliceID, snap.CurrentPlayerID)
	}

	waiting.send(protocol.MethodDrawCard, protocol.DrawCardRequest{RoomID: roomID})
	assert.Equal(t, "NOT_YOUR_TURN", decodeError(t, waiting.expect(protocol.MethodError)).Code)

	// A legal draw grows the hand and passes the turn.
	current.send(protocol.MethodDrawCard, protocol.DrawCardRequest{RoomID: roomID})
	var hand protocol.HandUpdate
	require.NoError(t, current.expect(protocol.MethodHandUpdate).DecodePayload(&hand))
	assert.Len(t, hand.Hand, 8)

	require.NoError(t, current.expect(protocol.MethodGameState).DecodePayload(&snap))
	assert.NotEqual(t, snap.CurrentPlayerID, uuid.Nil)
	if current == alice {
		assert.Equal(t, bobID, snap.CurrentPlayerID)
	} else {
		assert.Equal(t, aliceID, snap.CurrentPlayerID)
	}

	// Declaring with seven cards in hand is premature.
	current.send(protocol.MethodSayUno, protocol.SayUnoRequest{RoomID: roomID})
	assert.Equal(t, "INVALID_DECLARATION", decodeError(t, current.expect(protocol.MethodError)).Code)
}

func TestGameActionsBeforeStart(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	alice.createRoom("idle", "alice")

	alice.send(protocol.MethodDrawCard, protocol.DrawCardRequest{})
	assert.Equal(t, "GAME_NOT_STARTED", decodeError(t, alice.expect(protocol.MethodError)).Code)
}

func TestChooseColorStandsAlone(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr)

	c.send(protocol.MethodChooseColor, nil)
	assert.Equal(t, "UNEXPECTED_CHOOSE_COLOR", decodeError(t, c.expect(protocol.MethodError)).Code)
}

func TestChatRelay(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	bob := dial(t, addr)

	roomID := alice.createRoom("chatty", "alice")
	bob.joinRoom(roomID, "bob")

	alice.send(protocol.MethodLobbyChat, protocol.ChatMessage{Text: "hi there"})
	env := bob.expect(protocol.MethodLobbyChat)
	var msg protocol.ChatMessage
	require.NoError(t, env.DecodePayload(&msg))
	assert.Equal(t, "hi there", msg.Text)
	assert.Equal(t, "alice", msg.Sender, "sender is stamped server-side")

	// The sender gets no echo. Alice's queue holds exactly the two roster
	// pushes from create and join, then the pong, with no chat in between.
	alice.send(protocol.MethodPing, nil)
	got := []protocol.Method{alice.next().Method, alice.next().Method, alice.next().Method}
	assert.Equal(t, []protocol.Method{protocol.MethodLobbyUpdate, protocol.MethodLobbyUpdate, protocol.MethodPong}, got)
}

func TestKickPlayer(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	bob := dial(t, addr)

	roomID := alice.createRoom("strict", "alice")
	bob.joinRoom(roomID, "bob")

	// Only the creator may kick.
	var roster protocol.LobbyUpdate
	env := bob.expect(protocol.MethodLobbyUpdate)
	require.NoError(t, env.DecodePayload(&roster))
	aliceID := playerIDByName(t, roster, "alice")
	bobID := playerIDByName(t, roster, "bob")

	bob.send(protocol.MethodKickPlayer, protocol.KickPlayerRequest{RoomID: roomID, PlayerID: aliceID})
	assert.Equal(t, "NOT_CREATOR", decodeError(t, bob.expect(protocol.MethodError)).Code)

	alice.send(protocol.MethodKickPlayer, protocol.KickPlayerRequest{RoomID: roomID, PlayerID: bobID})
	alice.expect(protocol.MethodOk)

	// The kicked player can now join somewhere else.
	other := dial(t, addr)
	otherRoom := other.createRoom("elsewhere", "carol")
	bob.joinRoom(otherRoom, "bob")
}

func TestLeaveRoomDeletesEmptyRoom(t *testing.T) {
	addr := startServer(t)
	alice := dial(t, addr)
	alice.createRoom("fleeting", "alice")

	alice.send(protocol.MethodLeaveRoom, nil)
	alice.expect(protocol.MethodOk)

	alice.send(protocol.MethodGetRooms, nil)
	env := alice.expect(protocol.MethodRoomsList)
	var list protocol.RoomsList
	require.NoError(t, env.DecodePayload(&list))
	assert.Empty(t, list.Rooms)
}
