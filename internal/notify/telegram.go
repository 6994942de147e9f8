// Package notify sends the concise post-run summary to Telegram.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxMessageLen is Telegram's message size ceiling, with a little slack.
const maxMessageLen = 4000

// tailLines is how much of the run log is quoted on failure.
const tailLines = 40

// Notifier posts run summaries through the Telegram bot API.
type Notifier struct {
	BaseURL string // e.g. https://api.telegram.org; overridable for tests
	Token   string
	ChatID  string
	Client  *http.Client
}

// New returns a Notifier for the given bot credentials.
func New(baseURL, token, chatID string) *Notifier {
	return &Notifier{
		BaseURL: baseURL,
		Token:   token,
		ChatID:  chatID,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Message is the material the run summary is built from.
type Message struct {
	Status         string // success | failure | anything else, printed as-is
	ExecutedAt     string
	VariationCount string
	LogPath        string // run log quoted on failure; optional
}

// Build renders the notification text. Failures get the tail of the run log
// appended so the alert is actionable without opening the workflow.
func Build(m Message) string {
	var headline string
	switch strings.ToLower(m.Status) {
	case "success":
		headline = "Ejecucion completada correctamente."
	case "failure":
		headline = "Ejecucion con errores."
	default:
		headline = fmt.Sprintf("Ejecucion con estado: %s", m.Status)
	}

	count := m.VariationCount
	if count == "" {
		count = "N/D"
	}
	executedAt := m.ExecutedAt
	if executedAt == "" {
		executedAt = "N/D"
	}

	parts := []string{
		"🚀 Pipeline variaciones felinos",
		headline,
		fmt.Sprintf("Hora Bogota: %s", executedAt),
		fmt.Sprintf("Variaciones registradas: %s", count),
	}
	if !strings.EqualFold(m.Status, "success") {
		parts = append(parts, "", "Ultimas lineas:", readTail(m.LogPath, "No se genero salida del pipeline."))
	}
	return strings.Join(parts, "\n")
}

// Send posts the text to the configured chat.
func (n *Notifier) Send(text string) error {
	if n.Token == "" || n.ChatID == "" {
		return fmt.Errorf("telegram token and chat id must be set")
	}
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": n.ChatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(n.BaseURL, "/"), n.Token)
	resp, err := n.Client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}
	return nil
}

// readTail returns the last tailLines lines of the file, or fallback when
// the file is missing or empty.
func readTail(path, fallback string) string {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	tail := strings.TrimSpace(strings.Join(lines, "\n"))
	if tail == "" {
		return fallback
	}
	return tail
}
