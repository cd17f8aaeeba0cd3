package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "zcgw",
		Short:         "Provider gateway (zcgw): chat with LLM providers from one config",
		Long:          "zcgw dispatches chat messages to Ollama, OpenAI, OpenRouter, GitHub Copilot, Anthropic and Gemini, and runs the OAuth device and browser login flows that keep their tokens fresh.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newChatCmd(app),
		newLoginCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
