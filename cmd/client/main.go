package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Qarib2004/reddit-sub000/internal/client"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/models/socket"

	"go.uber.org/zap"
)

func main() {
	var (
		serverURL = flag.String("url", "ws://localhost:8000/ws/chat", "chat websocket endpoint")
		token     = flag.String("token", "", "JWT obtained from POST /login (required)")
		peerId    = flag.Uint("peer", 0, "user id to chat with (required)")
	)
	flag.Parse()

	if *token == "" || *peerId == 0 {
		flag.Usage()
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	handlers := client.Handlers{
		OnMessage: func(message models.Message) {
			fmt.Printf("\r[%d] %s\n> ", message.SenderID, message.Body)
		},
		OnHistory: func(messages []models.Message) {
			fmt.Print("\r--- history ---\n")
			for _, message := range messages {
				fmt.Printf("[%d] %s\n", message.SenderID, message.Body)
			}
			fmt.Print("---------------\n> ")
		},
		OnPresenceSet: func(userIds []uint) {
			fmt.Printf("\ronline: %v\n> ", userIds)
		},
		OnSendFailed: func(failure socket.SendFailedPayload) {
			fmt.Printf("\rsend failed: %s\n> ", strings.Join(failure.Reasons, "; "))
		},
		OnReconnect: func() {
			fmt.Print("\rconnected\n> ")
		},
	}

	chatClient := client.New(*serverURL, *token, uint(*peerId), handlers, logger)
	go chatClient.Run()
	defer chatClient.Close()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("> ")
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if line == "/quit" {
			return
		}
		if err := chatClient.SendMessage(uint(*peerId), line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		fmt.Print("> ")
	}
}
