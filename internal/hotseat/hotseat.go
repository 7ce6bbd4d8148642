// Package hotseat defines the players, question packs and sessions shared by
// setup and gameplay. It has no I/O and no third-party imports.
package hotseat

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidSelection = errors.New("invalid question selection")
)

// DefaultLocale is used when a pack has no name for the requested locale.
const DefaultLocale = "en"

type Player struct {
	ID         string
	Name       string
	Calibrated bool
	CreatedAt  time.Time
}

type QuestionPack struct {
	ID            string
	Names         map[string]string
	QuestionCount int
}

// Name returns the pack name for locale, falling back to DefaultLocale and
// then to any name the pack carries.
func (p QuestionPack) Name(locale string) string {
	if n, ok := p.Names[locale]; ok {
		return n
	}
	if n, ok := p.Names[DefaultLocale]; ok {
		return n
	}
	keys := make([]string, 0, len(p.Names))
	for k := range p.Names {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return p.ID
	}
	slices.Sort(keys)
	return p.Names[keys[0]]
}

type Question struct {
	ID       string
	PackID   string
	Position int
	Text     string
}

type SelectionMode string

const (
	SelectionRandom SelectionMode = "random"
	SelectionManual SelectionMode = "manual"
)

func (m SelectionMode) Valid() bool {
	return m == SelectionRandom || m == SelectionManual
}

type VerdictMode string

const (
	VerdictAfterEach VerdictMode = "after_each"
	VerdictAtEnd     VerdictMode = "at_end"
)

func (m VerdictMode) Valid() bool {
	return m == VerdictAfterEach || m == VerdictAtEnd
}

// QuestionsPerPlayer splits count evenly across players; the remainder is
// discarded.
func QuestionsPerPlayer(count, players int) int {
	if players <= 0 {
		return 0
	}
	return count / players
}

// GameConfiguration is the validated result of a completed setup flow.
type GameConfiguration struct {
	players       []Player
	pack          QuestionPack
	questionCount int
	selectionMode SelectionMode
	verdictMode   VerdictMode
	questionIDs   []string
}

func NewGameConfiguration(players []Player, pack QuestionPack, count int, sm SelectionMode, vm VerdictMode, questionIDs []string) GameConfiguration {
	return GameConfiguration{
		players:       slices.Clone(players),
		pack:          pack,
		questionCount: count,
		selectionMode: sm,
		verdictMode:   vm,
		questionIDs:   slices.Clone(questionIDs),
	}
}

func (c GameConfiguration) Players() []Player            { return slices.Clone(c.players) }
func (c GameConfiguration) Pack() QuestionPack           { return c.pack }
func (c GameConfiguration) QuestionCount() int           { return c.questionCount }
func (c GameConfiguration) SelectionMode() SelectionMode { return c.selectionMode }
func (c GameConfiguration) VerdictMode() VerdictMode     { return c.verdictMode }
func (c GameConfiguration) QuestionIDs() []string        { return slices.Clone(c.questionIDs) }

func (c GameConfiguration) QuestionsPerPlayer() int {
	return QuestionsPerPlayer(c.questionCount, len(c.players))
}

type SessionStatus string

const (
	SessionStatusPlaying   SessionStatus = "playing"
	SessionStatusCompleted SessionStatus = "completed"
)

type Session struct {
	ID                 string
	Status             SessionStatus
	PlayerIDs          []string
	QuestionIDs        []string
	QuestionsPerPlayer int
	VerdictMode        VerdictMode
	Turns              []Turn
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// Turn assigns one question to the player holding the device.
type Turn struct {
	Number     int
	PlayerID   string
	QuestionID string
}

// BuildTurns deals questions round-robin to players, giving each player
// perPlayer questions. Questions beyond perPlayer*len(playerIDs) are unused.
func BuildTurns(playerIDs, questionIDs []string, perPlayer int) []Turn {
	n := perPlayer * len(playerIDs)
	if n > len(questionIDs) {
		n = len(questionIDs)
	}
	turns := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		turns = append(turns, Turn{
			Number:     i + 1,
			PlayerID:   playerIDs[i%len(playerIDs)],
			QuestionID: questionIDs[i],
		})
	}
	return turns
}
