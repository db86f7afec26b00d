package lobby

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/uno-online/server/internal/game"
	"github.com/uno-online/server/internal/netconn"
	"github.com/uno-online/server/internal/protocol"
)

const (
	defaultMaxPlayers = 4
	maxRoomSize       = 8
)

// Handler routes decoded envelopes to lobby and game logic. It is the
// application side of the netconn dispatcher: one goroutine per connection
// calls in, while all shared state lives behind the room and session stores.
type Handler struct {
	logger   *logrus.Logger
	seq      *protocol.Sequence
	registry *netconn.Registry
	rooms    *RoomStore
	sessions *game.Store
}

// NewHandler wires the lobby to its collaborators.
func NewHandler(logger *logrus.Logger, seq *protocol.Sequence, registry *netconn.Registry, rooms *RoomStore, sessions *game.Store) *Handler {
	return &Handler{
		logger:   logger,
		seq:      seq,
		registry: registry,
		rooms:    rooms,
		sessions: sessions,
	}
}

// HandleConnect is called once per accepted connection. Nothing happens
// until the client introduces itself with a lobby request.
func (h *Handler) HandleConnect(c *netconn.Conn) {}

// HandleDisconnect removes the player from their room, if any. A running
// session keeps its fixed roster; the seat simply stops acting, which at
// worst stalls that one room.
func (h *Handler) HandleDisconnect(c *netconn.Conn) {
	room, ok := h.rooms.FindByMember(c.ID)
	if !ok {
		return
	}
	h.removeFromRoom(room, c.ID)
}

// HandleMessage dispatches one decoded envelope.
func (h *Handler) HandleMessage(c *netconn.Conn, env *protocol.Envelope) {
	switch env.Method {
	case protocol.MethodCreateRoom:
		h.handleCreateRoom(c, env)
	case protocol.MethodGetRooms:
		h.handleGetRooms(c)
	case protocol.MethodJoinRoomRequest:
		h.handleJoinRoom(c, env)
	case protocol.MethodLeaveRoom:
		h.handleLeaveRoom(c)
	case protocol.MethodKickPlayer:
		h.handleKickPlayer(c, env)
	case protocol.MethodStartGame:
		h.handleStartGame(c)
	case protocol.MethodPlayCard:
		h.handlePlayCard(c, env)
	case protocol.MethodDrawCard:
		h.handleDrawCard(c)
	case protocol.MethodSayUno:
		h.handleSayUno(c)
	case protocol.MethodChooseColor:
		// Color choice rides on PLAY_CARD; a standalone choice has nothing
		// to attach to.
		h.sendError(c, "color is chosen together with PLAY_CARD", "UNEXPECTED_CHOOSE_COLOR")
	case protocol.MethodLobbyChat, protocol.MethodGameChat:
		h.handleChat(c, env)
	case protocol.MethodPing:
		h.send(c, protocol.MethodPong, protocol.OkPayload{Message: "pong"})
	case protocol.MethodPong:
		// Keepalive reply, nothing to do.
	default:
		h.sendError(c, fmt.Sprintf("unsupported method %s", env.Method), "UNKNOWN_METHOD")
	}
}

func (h *Handler) handleCreateRoom(c *netconn.Conn, env *protocol.Envelope) {
	var req protocol.CreateRoomRequest
	if err := env.DecodePayload(&req); err != nil {
		h.send(c, protocol.MethodRoomCreatedError, protocol.ErrorPayload{Message: err.Error(), Code: "BAD_REQUEST"})
		return
	}
	if _, ok := h.rooms.FindByMember(c.ID); ok {
		h.send(c, protocol.MethodRoomCreatedError, protocol.ErrorPayload{Message: "already in a room", Code: "ALREADY_IN_ROOM"})
		return
	}

	rules := game.DefaultRules()
	if req.Rules != nil {
		if err := rules.Update(req.Rules); err != nil {
			h.send(c, protocol.MethodRoomCreatedError, protocol.ErrorPayload{Message: err.Error(), Code: "INVALID_RULES"})
			return
		}
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers <= 1 {
		maxPlayers = defaultMaxPlayers
	}
	if maxPlayers > maxRoomSize {
		maxPlayers = maxRoomSize
	}

	room := NewRoom(req.RoomName, req.Password, maxPlayers, c.ID, rules)
	if err := room.AddMember(&Member{ID: c.ID, Name: h.displayName(req.Username, c.ID)}, req.Password); err != nil {
		h.send(c, protocol.MethodRoomCreatedError, protocol.ErrorPayload{Message: err.Error(), Code: "CREATE_FAILED"})
		return
	}
	h.rooms.Add(room)

	h.logger.WithFields(logrus.Fields{"room": room.ID, "creator": c.ID}).Info("room created")
	h.send(c, protocol.MethodRoomCreatedSuccess, protocol.CreateRoomResponse{RoomID: room.ID, RoomName: room.Name, Success: true})
	h.broadcastLobbyUpdate(room)
}

func (h *Handler) handleGetRooms(c *netconn.Conn) {
	rooms := h.rooms.List()
	list := protocol.RoomsList{Rooms: make([]protocol.RoomInfo, 0, len(rooms))}
	for _, room := range rooms {
		list.Rooms = append(list.Rooms, protocol.RoomInfo{
			RoomID:         room.ID,
			RoomName:       room.Name,
			HasPassword:    room.Password != "",
			MaxPlayers:     room.MaxPlayers,
			CurrentPlayers: room.Len(),
			Status:         room.Status(),
			CreatorName:    room.MemberName(room.CreatorID),
		})
	}
	h.send(c, protocol.MethodRoomsList, list)
}

func (h *Handler) handleJoinRoom(c *netconn.Conn, env *protocol.Envelope) {
	var req protocol.JoinRoomRequest
	if err := env.DecodePayload(&req); err != nil {
		h.sendError(c, err.Error(), "BAD_REQUEST")
		return
	}
	if _, ok := h.rooms.FindByMember(c.ID); ok {
		h.sendError(c, "already in a room", "ALREADY_IN_ROOM")
		return
	}
	room, ok := h.rooms.Get(req.RoomID)
	if !ok {
		h.sendError(c, "room not found", "ROOM_NOT_FOUND")
		return
	}
	if room.InGame() {
		h.sendError(c, "game is already in progress", "GAME_IN_PROGRESS")
		return
	}
	if err := room.AddMember(&Member{ID: c.ID, Name: h.displayName(req.Username, c.ID)}, req.Password); err != nil {
		h.sendError(c, err.Error(), joinErrorCode(err))
		return
	}

	h.logger.WithFields(logrus.Fields{"room": room.ID, "player": c.ID}).Info("player joined room")
	h.send(c, protocol.MethodJoinRoomResponse, protocol.JoinRoomResponse{RoomID: room.ID, Success: true})
	h.broadcastLobbyUpdate(room)
}

func (h *Handler) handleLeaveRoom(c *netconn.Conn) {
	room, ok := h.rooms.FindByMember(c.ID)
	if !ok {
		h.sendError(c, "not in a room", "NOT_IN_ROOM")
		return
	}
	h.removeFromRoom(room, c.ID)
	h.send(c, protocol.MethodOk, protocol.OkPayload{Message: "left room"})
}

func (h *Handler) handleKickPlayer(c *netconn.Conn, env *protocol.Envelope) {
	var req protocol.KickPlayerRequest
	if err := env.DecodePayload(&req); err != nil {
		h.sendError(c, err.Error(), "BAD_REQUEST")
		return
	}
	room, ok := h.rooms.Get(req.RoomID)
	if !ok {
		h.sendError(c, "room not found", "ROOM_NOT_FOUND")
		return
	}
	if room.CreatorID != c.ID {
		h.sendError(c, ErrNotRoomCreator.Error(), "NOT_CREATOR")
		return
	}
	if room.InGame() {
		h.sendError(c, ErrGameInProgress.Error(), "GAME_IN_PROGRESS")
		return
	}
	if req.PlayerID == c.ID || !room.HasMember(req.PlayerID) {
		h.sendError(c, "player not kickable", "PLAYER_NOT_FOUND")
		return
	}

	h.removeFromRoom(room, req.PlayerID)
	h.sendTo(req.PlayerID, protocol.MethodOk, protocol.OkPayload{Message: "kicked from room"})
	h.send(c, protocol.MethodOk, protocol.OkPayload{Message: "player kicked"})
}

func (h *Handler) handleStartGame(c *netconn.Conn) {
	room, ok := h.rooms.FindByMember(c.ID)
	if !ok {
		h.sendError(c, "not in a room", "NOT_IN_ROOM")
		return
	}
	if room.CreatorID != c.ID {
		h.sendError(c, ErrNotRoomCreator.Error(), "NOT_CREATOR")
		return
	}
	if room.Len() < 2 {
		h.sendError(c, ErrNotEnoughSeated.Error(), "NOT_ENOUGH_PLAYERS")
		return
	}

	players := make([]*game.PlayerState, 0, room.Len())
	for _, m := range room.Members() {
		players = append(players, game.NewPlayerState(m.ID, m.Name))
	}
	if err := h.sessions.CreateSession(room.ID, players, room.Rules); err != nil {
		if errors.Is(err, game.ErrSessionExists) {
			h.sendError(c, "game already started", "GAME_IN_PROGRESS")
		} else {
			h.sendError(c, err.Error(), "START_FAILED")
		}
		return
	}
	room.SetInGame(true)

	h.logger.WithFields(logrus.Fields{"room": room.ID, "players": room.Len()}).Info("game started")
	h.send(c, protocol.MethodOk, protocol.OkPayload{Message: "game started"})
	h.broadcastLobbyUpdate(room)
	h.pushFullGameState(room)
}

func (h *Handler) handlePlayCard(c *netconn.Conn, env *protocol.Envelope) {
	var req protocol.PlayCardRequest
	if err := env.DecodePayload(&req); err != nil {
		h.sendError(c, err.Error(), "BAD_REQUEST")
		return
	}
	h.runGameAction(c, func(s *game.Session) (game.Snapshot, error) {
		return s.PlayCard(c.ID, req.CardIndex, req.ChosenColor)
	})
}

func (h *Handler) handleDrawCard(c *netconn.Conn) {
	h.runGameAction(c, func(s *game.Session) (game.Snapshot, error) {
		return s.DrawCard(c.ID)
	})
}

func (h *Handler) handleSayUno(c *netconn.Conn) {
	h.runGameAction(c, func(s *game.Session) (game.Snapshot, error) {
		return s.SayUno(c.ID)
	})
}

// runGameAction resolves the acting player's room, applies the action under
// the session store's exclusive accessor, and fans out the outcome: rule
// violations go back to the actor alone, successful actions broadcast a
// fresh snapshot, and resource exhaustion aborts the whole session.
func (h *Handler) runGameAction(c *netconn.Conn, action func(*game.Session) (game.Snapshot, error)) {
	room, ok := h.rooms.FindByMember(c.ID)
	if !ok {
		h.sendError(c, "not in a room", "NOT_IN_ROOM")
		return
	}

	var snap game.Snapshot
	var hand []game.Card
	err := h.sessions.WithSession(room.ID, func(s *game.Session) error {
		var actErr error
		snap, actErr = action(s)
		if actErr == nil || s.State() == game.StateAborted {
			hand, _ = s.HandOf(c.ID)
		}
		return actErr
	})

	switch {
	case err == nil:
		h.send(c, protocol.MethodHandUpdate, protocol.HandUpdate{Hand: hand})
		h.broadcastGameState(room, snap)
		if snap.State == game.StateFinished {
			h.endGame(room)
		}
	case errors.Is(err, game.ErrSessionNotFound):
		h.sendError(c, "game not started", "GAME_NOT_STARTED")
	case errors.Is(err, game.ErrDeckExhausted), errors.Is(err, game.ErrEmptyDiscard):
		h.abortGame(room, snap, err)
	default:
		h.sendError(c, err.Error(), ruleCode(err))
	}
}

// handleChat relays a chat line to the other members of the sender's room,
// echoing the incoming method so lobby and game chat stay distinct.
func (h *Handler) handleChat(c *netconn.Conn, env *protocol.Envelope) {
	var msg protocol.ChatMessage
	if err := env.DecodePayload(&msg); err != nil {
		h.sendError(c, err.Error(), "BAD_REQUEST")
		return
	}
	room, ok := h.rooms.FindByMember(c.ID)
	if !ok {
		h.sendError(c, "not in a room", "NOT_IN_ROOM")
		return
	}
	msg.RoomID = room.ID
	msg.Sender = room.MemberName(c.ID)

	out, err := protocol.NewEnvelope(h.seq, env.Method, msg)
	if err != nil {
		h.logger.WithError(err).Error("encode chat payload")
		return
	}
	for _, id := range room.MemberIDs() {
		if id != c.ID {
			h.registry.Unicast(id, out)
		}
	}
}

// endGame tears the finished session down and returns the room to the lobby.
func (h *Handler) endGame(room *Room) {
	h.sessions.RemoveSession(room.ID)
	room.SetInGame(false)
	h.logger.WithField("room", room.ID).Info("game finished")
	h.broadcastLobbyUpdate(room)
}

// abortGame notifies every member that the session died, then discards it.
func (h *Handler) abortGame(room *Room, snap game.Snapshot, cause error) {
	h.logger.WithFields(logrus.Fields{"room": room.ID, "error": cause}).Warn("game aborted")
	errEnv, err := protocol.NewEnvelope(h.seq, protocol.MethodError,
		protocol.ErrorPayload{Message: cause.Error(), Code: "GAME_ABORTED"})
	if err == nil {
		h.registry.Multicast(room.MemberIDs(), errEnv)
	}
	h.broadcastGameState(room, snap)
	h.sessions.RemoveSession(room.ID)
	room.SetInGame(false)
	h.broadcastLobbyUpdate(room)
}

// pushFullGameState sends each member their private hand and everyone the
// public snapshot. Hands are copied under the session lock and delivered
// after it is released.
func (h *Handler) pushFullGameState(room *Room) {
	var snap game.Snapshot
	hands := make(map[uuid.UUID][]game.Card)
	err := h.sessions.WithSession(room.ID, func(s *game.Session) error {
		snap = s.Snapshot()
		for _, id := range room.MemberIDs() {
			if hand, ok := s.HandOf(id); ok {
				hands[id] = hand
			}
		}
		return nil
	})
	if err != nil {
		h.logger.WithFields(logrus.Fields{"room": room.ID, "error": err}).Warn("push game state failed")
		return
	}
	for id, hand := range hands {
		h.sendTo(id, protocol.MethodHandUpdate, protocol.HandUpdate{Hand: hand})
	}
	h.broadcastGameState(room, snap)
}

func (h *Handler) broadcastGameState(room *Room, snap game.Snapshot) {
	env, err := protocol.NewEnvelope(h.seq, protocol.MethodGameState, snap)
	if err != nil {
		h.logger.WithError(err).Error("encode game state")
		return
	}
	h.registry.Multicast(room.MemberIDs(), env)
}

func (h *Handler) broadcastLobbyUpdate(room *Room) {
	update := protocol.LobbyUpdate{RoomID: room.ID, Status: room.Status()}
	for _, m := range room.Members() {
		update.Players = append(update.Players, protocol.PlayerInfo{
			PlayerID: m.ID,
			Username: m.Name,
			IsOwner:  m.ID == room.CreatorID,
		})
	}
	env, err := protocol.NewEnvelope(h.seq, protocol.MethodLobbyUpdate, update)
	if err != nil {
		h.logger.WithError(err).Error("encode lobby update")
		return
	}
	h.registry.Multicast(room.MemberIDs(), env)
}

// removeFromRoom unseats the player and cleans up an emptied room together
// with any session it still owns.
func (h *Handler) removeFromRoom(room *Room, playerID uuid.UUID) {
	if room.RemoveMember(playerID) {
		h.sessions.RemoveSession(room.ID)
		h.rooms.Delete(room.ID)
		h.logger.WithField("room", room.ID).Info("room deleted, last player left")
		return
	}
	h.broadcastLobbyUpdate(room)
}

func (h *Handler) displayName(requested string, id uuid.UUID) string {
	if requested != "" {
		return requested
	}
	return fmt.Sprintf("Player_%s", id.String()[:4])
}

func (h *Handler) send(c *netconn.Conn, method protocol.Method, payload interface{}) {
	env, err := protocol.NewEnvelope(h.seq, method, payload)
	if err != nil {
		h.logger.WithError(err).Error("encode payload")
		return
	}
	c.Send(env)
}

func (h *Handler) sendTo(id uuid.UUID, method protocol.Method, payload interface{}) {
	env, err := protocol.NewEnvelope(h.seq, method, payload)
	if err != nil {
		h.logger.WithError(err).Error("encode payload")
		return
	}
	h.registry.Unicast(id, env)
}

func (h *Handler) sendError(c *netconn.Conn, message, code string) {
	h.send(c, protocol.MethodError, protocol.ErrorPayload{Message: message, Code: code})
}

// ruleCode maps game rule violations to stable wire codes.
func ruleCode(err error) string {
	switch {
	case errors.Is(err, game.ErrNotPlayersTurn):
		return "NOT_YOUR_TURN"
	case errors.Is(err, game.ErrIllegalPlay):
		return "ILLEGAL_PLAY"
	case errors.Is(err, game.ErrInvalidIndex):
		return "INVALID_INDEX"
	case errors.Is(err, game.ErrInvalidDeclaration):
		return "INVALID_DECLARATION"
	case errors.Is(err, game.ErrMissingColorChoice):
		return "MISSING_COLOR_CHOICE"
	default:
		return "GAME_ERROR"
	}
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrWrongPassword):
		return "INVALID_PASSWORD"
	case errors.Is(err, ErrRoomFull):
		return "ROOM_FULL"
	case errors.Is(err, ErrAlreadyInRoom):
		return "ALREADY_IN_ROOM"
	default:
		return "JOIN_FAILED"
	}
}
