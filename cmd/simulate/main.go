// Command simulate runs scripted matches between two greedy bots and
// reports the outcomes. Useful for smoke-testing balance changes to the
// card data without standing up the full server.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/frontline-tcg/frontline-server/internal/bot"
	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

var (
	cardsPath     = flag.String("cards", "data/cards.yaml", "path to card definitions")
	abilitiesPath = flag.String("abilities", "data/abilities.yaml", "path to ability definitions")
	decksPath     = flag.String("decks", "data/decks.yaml", "path to deck definitions")
	deckA         = flag.String("deck-a", "", "deck ID for the first player (defaults to the first catalog deck)")
	deckB         = flag.String("deck-b", "", "deck ID for the second player (defaults to the second catalog deck)")
	matches       = flag.Int("matches", 10, "number of matches to simulate")
	seed          = flag.Int64("seed", 1, "base RNG seed; match i uses seed+i")
	verbose       = flag.Bool("v", false, "enable debug logging")
	maxTurnPairs  = flag.Int("max-turns", 200, "abort a match after this many bot turns")
)

func main() {
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	registry := game.NewSpecialRegistry()
	game.RegisterBuiltins(registry)

	cat, err := catalog.LoadFiles(*cardsPath, *abilitiesPath, *decksPath, registry.IDs())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load card catalog: %v\n", err)
		os.Exit(1)
	}

	deckIDs := cat.DeckIDs()
	first, second := *deckA, *deckB
	if first == "" {
		if len(deckIDs) < 1 {
			fmt.Fprintln(os.Stderr, "No decks in catalog")
			os.Exit(1)
		}
		first = deckIDs[0]
	}
	if second == "" {
		second = deckIDs[len(deckIDs)-1]
	}

	engine := game.NewEngine(cat, registry, game.DefaultRules(), logger)
	if *verbose {
		engine.SetEventHandler(func(ev rules.Event) {
			logger.Debug("event",
				zap.String("type", string(ev.Type)),
				zap.String("match_id", ev.MatchID),
				zap.String("player_id", ev.PlayerID),
				zap.String("card_id", ev.CardID),
				zap.Int("amount", ev.Amount),
				zap.Int("turn", ev.Turn),
			)
		})
	}
	player := bot.NewGreedy(engine, logger)

	wins := map[string]int{}
	draws := 0
	totalTurns := 0

	for i := 0; i < *matches; i++ {
		matchID := fmt.Sprintf("sim-%d", i)
		err := engine.StartMatch(matchID,
			game.PlayerSetup{PlayerID: "alpha", DeckID: first},
			game.PlayerSetup{PlayerID: "bravo", DeckID: second},
			*seed+int64(i),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start match %s: %v\n", matchID, err)
			os.Exit(1)
		}

		result := runMatch(engine, player, matchID)
		if result == nil {
			draws++
			fmt.Printf("%s: no winner after %d turns\n", matchID, *maxTurnPairs)
		} else {
			wins[result.WinnerID]++
			totalTurns += result.Turn
			fmt.Printf("%s: %s wins on turn %d\n", matchID, result.WinnerID, result.Turn)
		}

		engine.CloseMatch(matchID)
	}

	fmt.Printf("\n%s (%s): %d wins\n", "alpha", first, wins["alpha"])
	fmt.Printf("%s (%s): %d wins\n", "bravo", second, wins["bravo"])
	if draws > 0 {
		fmt.Printf("aborted: %d\n", draws)
	}
	if decided := *matches - draws; decided > 0 {
		fmt.Printf("average match length: %.1f turns\n", float64(totalTurns)/float64(decided))
	}
}

func runMatch(engine *game.Engine, player *bot.Greedy, matchID string) *game.MatchResult {
	seats := []string{"alpha", "bravo"}
	for i := 0; i < *maxTurnPairs; i++ {
		if result, _ := engine.Result(matchID); result != nil {
			return result
		}
		if err := player.TakeTurn(matchID, seats[i%2]); err != nil {
			fmt.Fprintf(os.Stderr, "bot error in %s: %v\n", matchID, err)
			return nil
		}
	}
	result, _ := engine.Result(matchID)
	return result
}
