package diagnostics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"gomori.dev/x/judge/pkg/eve/match"
)

// Recorder saves every request and response of a match as a JSON file
// named after the match number, like game_000001.json. A recording is
// written once its match has finished.
type Recorder struct {
	Directory string

	mu    sync.Mutex
	games map[int][]Exchange
}

// Exchange is a single request to a player and its response, which is
// null for notifications and unanswered requests.
type Exchange struct {
	Player   string          `json:"player"`
	Request  json.RawMessage `json:"request"`
	Response json.RawMessage `json:"response"`
}

// NewRecorder creates a recorder writing into the given directory, which
// is created if it doesn't exist.
func NewRecorder(directory string) (*Recorder, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("new recorder: %w", err)
	}

	return &Recorder{
		Directory: directory,
		games:     make(map[int][]Exchange),
	}, nil
}

func (recorder *Recorder) Trace(event match.Event) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	exchanges := recorder.games[event.Match]

	switch event.Tag {
	case match.TagSent:
		exchanges = append(exchanges, Exchange{
			Player:  event.Player,
			Request: raw(event.Line),
		})

	case match.TagReceived:
		for i := len(exchanges) - 1; i >= 0; i-- {
			if exchanges[i].Player == event.Player {
				if exchanges[i].Response == nil {
					exchanges[i].Response = raw(event.Line)
				}
				break
			}
		}

	default:
		return
	}

	recorder.games[event.Match] = exchanges
}

// Finished writes the recording of the given match.
func (recorder *Recorder) Finished(result match.Result) {
	recorder.mu.Lock()
	exchanges := recorder.games[result.Number]
	delete(recorder.games, result.Number)
	recorder.mu.Unlock()

	if exchanges == nil {
		exchanges = []Exchange{}
	}

	if err := recorder.write(result.Number, exchanges); err != nil {
		logrus.Errorf("Recording game #%d: %v", result.Number, err)
	}
}

// Path returns the file the given match is recorded to.
func (recorder *Recorder) Path(number int) string {
	return filepath.Join(recorder.Directory, fmt.Sprintf("game_%06d.json", number))
}

func (recorder *Recorder) write(number int, exchanges []Exchange) error {
	data, err := json.MarshalIndent(exchanges, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(recorder.Path(number), data, 0644)
}

// raw keeps valid JSON lines as they are, and quotes anything else so that
// malformed responses still end up in the recording.
func raw(line string) json.RawMessage {
	if json.Valid([]byte(line)) {
		return json.RawMessage(line)
	}

	quoted, _ := json.Marshal(line)
	return quoted
}
