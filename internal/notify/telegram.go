package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
)

type TelegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	Parse  string `json:"parse_mode"`
}

func init() {
	_ = godotenv.Load()
}

func SendTelegramMessage(chatID string, content string) error {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return fmt.Errorf("missing TELEGRAM_BOT_TOKEN in env")
	}
	if chatID == "" {
		return fmt.Errorf("missing telegram chat id")
	}

	msg := TelegramMessage{ChatID: chatID, Text: content, Parse: "Markdown"}
	body, _ := json.Marshal(msg)
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", botToken)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// Notify sends asynchronously; ops alerts never block a money path.
func Notify(chatID, level, title, content string) {
	go func() {
		text := fmt.Sprintf("*[%s] %s*\n%s", level, title, content)
		if err := SendTelegramMessage(chatID, text); err != nil {
			log.Printf("[NOTIFY] telegram send failed: %v", err)
		}
	}()
}
