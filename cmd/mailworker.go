/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/profilehub/apiserver/config"
	"github.com/profilehub/apiserver/internal/mailer"
	"github.com/profilehub/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// mailworkerCmd represents the mailworker command. It consumes queued
// mail envelopes published by the server (MAILER_MODE=queue) and
// delivers them over SMTP.
var mailworkerCmd = &cobra.Command{
	Use:   "mailworker",
	Short: "Delivers queued outbound mail",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		queue, err := server.NewQueue(cmd.Context(), cfg.MQ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to queue: %v\n", err)
			os.Exit(1)
		}
		if queue == nil {
			fmt.Fprintln(os.Stderr, "MQ_BACKEND is required for the mail worker")
			os.Exit(1)
		}
		defer queue.Close()

		delivery, err := mailer.NewSMTPMailer(cfg.Mailer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to configure smtp: %v\n", err)
			os.Exit(1)
		}

		worker := mailer.NewWorker(queue, delivery)
		if err := worker.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "mail worker error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mailworkerCmd)
}
