package cli

import (
	"context"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/example/wicket/internal/ctxutil"
	"github.com/example/wicket/internal/wire"
)

// actorEnvVar overrides the acting identity without a flag; useful for
// agents and CI jobs that cannot edit their invocation.
const actorEnvVar = "WICKET_ACTOR"

// AddActorFlag registers the persistent --actor flag on the root command.
func AddActorFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("actor", "", "acting identity recorded in the ledger (e.g. human:alice, agent:builder)")
}

// actorContext returns a context carrying the resolved acting identity.
// Resolution order: --actor flag, WICKET_ACTOR, the configured default
// actor, then the OS user.
func actorContext(cmd *cobra.Command) context.Context {
	ctx := context.Background()
	if actor, _ := cmd.Flags().GetString("actor"); actor != "" {
		return ctxutil.WithActor(ctx, actor)
	}
	if actor := os.Getenv(actorEnvVar); actor != "" {
		return ctxutil.WithActor(ctx, actor)
	}
	if actor := wire.Config().DefaultActor; actor != "" {
		return ctxutil.WithActor(ctx, actor)
	}
	return ctxutil.WithActor(ctx, osActor())
}

func osActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return "human:" + u.Username
	}
	return "human:unknown"
}
