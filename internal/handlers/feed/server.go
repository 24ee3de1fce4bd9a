package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rustweek/royale/internal/services/scoring"
)

// Server is the websocket endpoint the game-server plugin connects to.
// Each frame is a JSON envelope carrying one raw game event; malformed
// frames are logged and skipped, never dropped connections.
type Server struct {
	scoring  scoring.Service
	token    string
	upgrader websocket.Upgrader
}

// Config holds the feed server dependencies
type Config struct {
	// Scoring consumes the decoded events
	Scoring scoring.Service

	// AuthToken is the shared secret the plugin presents in the
	// X-Feed-Token header
	AuthToken string
}

// NewServer creates a new feed server
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Scoring == nil {
		return nil, errors.New("scoring cannot be nil")
	}

	if cfg.AuthToken == "" {
		return nil, errors.New("auth token cannot be empty")
	}

	return &Server{
		scoring: cfg.Scoring,
		token:   cfg.AuthToken,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}, nil
}

// ServeHTTP upgrades the connection and pumps events into scoring
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Feed-Token") != s.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade feed connection: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("feed connected from %s", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("feed connection closed unexpectedly: %v", err)
			}
			return
		}

		if err := s.dispatch(r.Context(), data); err != nil {
			log.Printf("skipping feed frame: %v", err)
		}
	}
}

// dispatch decodes one envelope and routes it to the scoring service
func (s *Server) dispatch(ctx context.Context, data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	switch env.Type {
	case eventTypeDamage:
		event, err := decodeDamage(env.Payload)
		if err != nil {
			return err
		}
		return s.scoring.RecordDamage(ctx, &scoring.RecordDamageInput{Event: event})

	case eventTypeDeath:
		event, err := decodeDeath(env.Payload)
		if err != nil {
			return err
		}
		_, err = s.scoring.RecordDeath(ctx, &scoring.RecordDeathInput{Event: event})
		return err

	case eventTypeEntityDeath:
		event, err := decodeEntityDeath(env.Payload)
		if err != nil {
			return err
		}
		_, err = s.scoring.RecordEntityDeath(ctx, &scoring.RecordEntityDeathInput{Event: event})
		return err

	case eventTypeKitRedeem:
		p, err := decodeKitRedeem(env.Payload)
		if err != nil {
			return err
		}
		_, err = s.scoring.RedeemKit(ctx, &scoring.RedeemKitInput{
			PlayerID: p.PlayerID,
			KitName:  p.KitName,
			Cost:     p.Cost,
		})
		return err

	default:
		return fmt.Errorf("unknown event type %q", env.Type)
	}
}
