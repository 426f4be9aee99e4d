package protocol

// SendOption is the first byte of every frame handed to the transport.
type SendOption byte

const (
	SendOptionNone       SendOption = 0
	SendOptionReliable   SendOption = 1
	SendOptionHello      SendOption = 8
	SendOptionDisconnect SendOption = 9
	SendOptionPing       SendOption = 12
)

// MessageType is the root message tag, the first byte after a frame header.
type MessageType byte

const (
	MessageTypeHostGame     MessageType = 0
	MessageTypeJoinGame     MessageType = 1
	MessageTypeStartGame    MessageType = 2
	MessageTypeRemoveGame   MessageType = 3
	MessageTypeRemovePlayer MessageType = 4
	MessageTypeGameData     MessageType = 5
	MessageTypeGameDataTo   MessageType = 6
	MessageTypeJoinedGame   MessageType = 7
	MessageTypeEndGame      MessageType = 8
	MessageTypeAlterGame    MessageType = 10
	MessageTypeKickPlayer   MessageType = 11
	MessageTypeWaitForHost  MessageType = 12
	MessageTypeRedirect     MessageType = 13
)

// DisconnectReason is carried in RemovePlayer messages and disconnect notices.
// Values are part of the client contract.
type DisconnectReason byte

const (
	DisconnectReasonExitGame         DisconnectReason = 0
	DisconnectReasonGameFull         DisconnectReason = 1
	DisconnectReasonGameStarted      DisconnectReason = 2
	DisconnectReasonGameNotFound     DisconnectReason = 3
	DisconnectReasonIncorrectVersion DisconnectReason = 5
	DisconnectReasonBanned           DisconnectReason = 6
	DisconnectReasonKicked           DisconnectReason = 7
	DisconnectReasonCustom           DisconnectReason = 8
	DisconnectReasonDestroy          DisconnectReason = 16
	DisconnectReasonError            DisconnectReason = 17
)

// GameState is the session lifecycle state.
type GameState byte

const (
	GameStateNotStarted GameState = 0
	GameStateStarted    GameState = 1
	GameStateEnded      GameState = 2
	GameStateDestroyed  GameState = 3
)

func (s GameState) String() string {
	switch s {
	case GameStateNotStarted:
		return "NotStarted"
	case GameStateStarted:
		return "Started"
	case GameStateEnded:
		return "Ended"
	case GameStateDestroyed:
		return "Destroyed"
	}
	return "Unknown"
}

// LimboState records whether a joined player is fully admitted or still
// waiting on the host. Flag values, matching the client.
type LimboState byte

const (
	LimboStatePreSpawn       LimboState = 1
	LimboStateNotLimbo       LimboState = 2
	LimboStateWaitingForHost LimboState = 4
)

// AlterGameTag selects which game property an AlterGame message changes.
// ChangePrivacy is the only tag the client sends today.
type AlterGameTag byte

const (
	AlterGameTagChangePrivacy AlterGameTag = 1
)
