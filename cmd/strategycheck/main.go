package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"solana-honey-bot/internal/market"
	"solana-honey-bot/internal/token"
)

// Terminal harness for the strategy filter: run it against the built-in
// sample set, or with -live against the real discovery feed.
func main() {
	minVolume := flag.Float64("volume", 7, "minimum 24h volume")
	minHolders := flag.Float64("holders", 34, "minimum holder count")
	minAge := flag.Float64("age", 3, "minimum age in minutes")
	live := flag.Bool("live", false, "fetch the live token list instead of the sample set")
	top := flag.Int("top", 10, "show at most this many matches")
	flag.Parse()

	strategy := &token.Strategy{
		MinVolume:  token.Num(*minVolume),
		MinHolders: token.Num(*minHolders),
		MinAge:     token.Num(*minAge),
		Enabled:    true,
	}

	var tokens []token.Info
	if *live {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client := market.NewClient(market.DefaultEndpoints(), 10*time.Second)
		client.SetBirdeyeKey(os.Getenv("BIRDEYE_API_KEY"))
		tokens = client.Trending(ctx)
		if len(tokens) == 0 {
			color.Red("❌ No tokens returned from the discovery feed")
			os.Exit(1)
		}
	} else {
		tokens = sampleTokens()
	}

	fmt.Println("----------------------------------------")
	fmt.Println("🔍 STRATEGY FILTER CHECK")
	fmt.Println("----------------------------------------")
	fmt.Printf("Min volume:  %v\nMin holders: %v\nMin age:     %v min\n\n", *minVolume, *minHolders, *minAge)

	matched := token.RankByVolume(token.ApplyStrategy(tokens, strategy), *top)
	if len(matched) == 0 {
		color.Yellow("⚠️  No tokens match (%d candidates)", len(tokens))
		os.Exit(0)
	}

	color.Green("✅ %d of %d tokens match:", len(matched), len(tokens))
	for i, t := range matched {
		fmt.Printf("%d. %-8s volume %-12s holders %-8s age %s min  %s\n",
			i+1, name(t), fmtNum(t.Volume), fmtNum(t.Holders), fmtNum(t.AgeMinutes), t.Address)
	}
}

func name(t token.Info) string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Name
}

func fmtNum(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%g", *v)
}

func sampleTokens() []token.Info {
	return []token.Info{
		{Symbol: "BONK", Volume: token.Num(10), Holders: token.Num(50), AgeMinutes: token.Num(5), Address: "token1"},
		{Symbol: "DOG", Volume: token.Num(5), Holders: token.Num(40), AgeMinutes: token.Num(4), Address: "token2"},
		{Symbol: "CAT", Volume: token.Num(8), Holders: token.Num(35), AgeMinutes: token.Num(3), Address: "token3"},
		{Symbol: "FOX", Volume: token.Num(7), Holders: token.Num(34), AgeMinutes: token.Num(3), Address: "token4"},
		{Symbol: "BIRD", Volume: token.Num(6), Holders: token.Num(33), AgeMinutes: token.Num(2), Address: "token5"},
	}
}
