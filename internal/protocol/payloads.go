package protocol

import (
	"github.com/google/uuid"

	"github.com/uno-online/server/internal/game"
)

// RoomStatus mirrors the lobby-visible room lifecycle.
type RoomStatus string

const (
	RoomWaiting    RoomStatus = "WAITING"
	RoomInProgress RoomStatus = "IN_PROGRESS"
	RoomFinished   RoomStatus = "FINISHED"
)

// CreateRoomRequest opens a new room. Rules entries override the default
// house rules; unknown keys are rejected by the rules parser.
type CreateRoomRequest struct {
	RoomName   string                 `json:"roomName"`
	Password   string                 `json:"password,omitempty"`
	MaxPlayers int                    `json:"maxPlayers,omitempty"`
	Username   string                 `json:"username,omitempty"`
	Rules      map[string]interface{} `json:"rules,omitempty"`
}

// CreateRoomResponse answers CREATE_ROOM under ROOM_CREATED_SUCCESS.
type CreateRoomResponse struct {
	RoomID   uuid.UUID `json:"roomId"`
	RoomName string    `json:"roomName"`
	Success  bool      `json:"isSuccessful"`
}

type JoinRoomRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username,omitempty"`
}

type JoinRoomResponse struct {
	RoomID  uuid.UUID `json:"roomId"`
	Success bool      `json:"isSuccessful"`
}

type LeaveRoomRequest struct {
	RoomID uuid.UUID `json:"roomId"`
}

type KickPlayerRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
}

// RoomInfo is one entry of a ROOMS_LIST response.
type RoomInfo struct {
	RoomID         uuid.UUID  `json:"roomId"`
	RoomName       string     `json:"roomName"`
	HasPassword    bool       `json:"hasPassword"`
	MaxPlayers     int        `json:"maxPlayers"`
	CurrentPlayers int        `json:"currentPlayers"`
	Status         RoomStatus `json:"status"`
	CreatorName    string     `json:"creatorName"`
}

type RoomsList struct {
	Rooms []RoomInfo `json:"rooms"`
}

// PlayerInfo is the lobby-level view of a seated player.
type PlayerInfo struct {
	PlayerID uuid.UUID `json:"playerId"`
	Username string    `json:"username"`
	IsOwner  bool      `json:"isOwner"`
}

// LobbyUpdate is pushed to every room member when the roster or status changes.
type LobbyUpdate struct {
	RoomID  uuid.UUID    `json:"roomId"`
	Players []PlayerInfo `json:"players"`
	Status  RoomStatus   `json:"roomStatus"`
}

type StartGameRequest struct {
	RoomID uuid.UUID `json:"roomId"`
}

// PlayCardRequest plays the card at CardIndex of the sender's hand.
// ChosenColor is required when the card is a wild.
type PlayCardRequest struct {
	RoomID      uuid.UUID       `json:"roomId"`
	CardIndex   int             `json:"cardIndex"`
	ChosenColor *game.CardColor `json:"chosenColor,omitempty"`
}

type DrawCardRequest struct {
	RoomID uuid.UUID `json:"roomId"`
}

type SayUnoRequest struct {
	RoomID uuid.UUID `json:"roomId"`
}

// HandUpdate is delivered privately to one player after their hand changes.
type HandUpdate struct {
	Hand []game.Card `json:"hand"`
}

// ChatMessage is relayed to the other members of the sender's room. Sender is
// filled in server-side.
type ChatMessage struct {
	RoomID uuid.UUID `json:"roomId"`
	Sender string    `json:"sender,omitempty"`
	Text   string    `json:"text"`
}

type OkPayload struct {
	Message string `json:"message"`
}

// ErrorPayload carries a human-readable message and a stable machine code.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
