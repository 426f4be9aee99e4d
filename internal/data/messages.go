package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Messages holds the server-authored texts delivered to clients through
// Custom disconnect notices. Operators override them per deployment.
type Messages struct {
	// GameDestroyed is shown to a client joining a game that is being
	// torn down.
	GameDestroyed string `yaml:"game_destroyed"`
	// ServerShutdown is shown to every connected client when the server
	// stops.
	ServerShutdown string `yaml:"server_shutdown"`
	// ServerFull is shown to a client hosting a game when the game limit
	// is reached.
	ServerFull string `yaml:"server_full"`
}

// DefaultMessages returns the compiled-in texts.
func DefaultMessages() *Messages {
	return &Messages{
		GameDestroyed:  "The game you tried to join is no longer available.",
		ServerShutdown: "The server is shutting down.",
		ServerFull:     "The server cannot create any more games right now.",
	}
}

// LoadMessages loads message overrides from a YAML file on top of the
// defaults. A missing file is not an error; operators usually run stock.
func LoadMessages(path string) (*Messages, error) {
	m := DefaultMessages()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read messages %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("parse messages %s: %w", path, err)
	}
	return m, nil
}
