package handler

import (
	"go.uber.org/zap"

	"github.com/thelostgroup/Impostor/internal/config"
	"github.com/thelostgroup/Impostor/internal/data"
	"github.com/thelostgroup/Impostor/internal/game"
	"github.com/thelostgroup/Impostor/internal/protocol"
)

// Deps holds shared dependencies injected into all root-message handlers.
type Deps struct {
	Log     *zap.Logger
	Manager *game.Manager
	Config  *config.Config
	Msgs    *data.Messages
}

// Func handles one decoded root message for an established client.
type Func func(c *Client, r *protocol.MessageReader)

// Registry maps root message tags to handlers.
type Registry struct {
	handlers map[protocol.MessageType]Func
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[protocol.MessageType]Func)}
}

func (reg *Registry) Register(t protocol.MessageType, fn Func) {
	reg.handlers[t] = fn
}

func (reg *Registry) Lookup(t protocol.MessageType) Func {
	return reg.handlers[t]
}

// RegisterAll registers every root-message handler into the registry.
func RegisterAll(reg *Registry, deps *Deps) {
	reg.Register(protocol.MessageTypeHostGame, func(c *Client, r *protocol.MessageReader) {
		HandleHostGame(c, r, deps)
	})
	reg.Register(protocol.MessageTypeJoinGame, func(c *Client, r *protocol.MessageReader) {
		HandleJoinGame(c, r, deps)
	})
	reg.Register(protocol.MessageTypeRemovePlayer, func(c *Client, r *protocol.MessageReader) {
		HandleRemovePlayer(c, r, deps)
	})
	reg.Register(protocol.MessageTypeStartGame, func(c *Client, r *protocol.MessageReader) {
		HandleStartGame(c, r, deps)
	})
	reg.Register(protocol.MessageTypeEndGame, func(c *Client, r *protocol.MessageReader) {
		HandleEndGame(c, r, deps)
	})
	reg.Register(protocol.MessageTypeAlterGame, func(c *Client, r *protocol.MessageReader) {
		HandleAlterGame(c, r, deps)
	})
	reg.Register(protocol.MessageTypeKickPlayer, func(c *Client, r *protocol.MessageReader) {
		HandleKickPlayer(c, r, deps)
	})
	reg.Register(protocol.MessageTypeGameData, func(c *Client, r *protocol.MessageReader) {
		HandleGameData(c, r, deps)
	})
	reg.Register(protocol.MessageTypeGameDataTo, func(c *Client, r *protocol.MessageReader) {
		HandleGameDataTo(c, r, deps)
	})
}
