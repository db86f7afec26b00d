package protocol

// Version tags the wire protocol revision carried by every envelope.
type Version string

// V1 is the only protocol revision in use.
const V1 Version = "V1"

// Method identifies the request, response, or pushed event an envelope
// carries. Values are stable wire strings.
type Method string

// Lobby methods.
const (
	MethodCreateRoom         Method = "CREATE_ROOM"
	MethodRoomCreatedSuccess Method = "ROOM_CREATED_SUCCESS"
	MethodRoomCreatedError   Method = "ROOM_CREATED_ERROR"
	MethodGetRooms           Method = "GET_ROOMS"
	MethodRoomsList          Method = "ROOMS_LIST"
	MethodJoinRoomRequest    Method = "JOIN_ROOM_REQUEST"
	MethodJoinRoomResponse   Method = "JOIN_ROOM_RESPONSE"
	MethodLeaveRoom          Method = "LEAVE_ROOM"
	MethodKickPlayer         Method = "KICK_PLAYER"
	MethodLobbyUpdate        Method = "LOBBY_UPDATE"
	MethodLobbyChat          Method = "LOBBY_CHAT"
)

// Game methods.
const (
	MethodStartGame   Method = "START_GAME"
	MethodGameState   Method = "GAME_STATE"
	MethodHandUpdate  Method = "HAND_UPDATE"
	MethodPlayCard    Method = "PLAY_CARD"
	MethodDrawCard    Method = "DRAW_CARD"
	MethodSayUno      Method = "SAY_UNO"
	MethodChooseColor Method = "CHOOSE_COLOR"
	MethodGameChat    Method = "GAME_CHAT"
)

// System methods.
const (
	MethodPing  Method = "PING"
	MethodPong  Method = "PONG"
	MethodOk    Method = "OK"
	MethodError Method = "ERROR"
)
