package cli

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask a question about the uploaded documents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		askQuestion(args[0])
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func askQuestion(question string) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		log.Fatalf("Error creating JSON payload: %v", err)
	}

	resp, err := http.Post(serverURL+"/api/chat", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Error sending question: %v", err)
	}
	defer resp.Body.Close()
	printResponse(resp)
}
