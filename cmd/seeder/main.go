// Seeder populates a gig database with sample listings, or with listings
// read from a JSON file. Intended for local development and demos.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/gridlyapp/gigsearch"
	"github.com/gridlyapp/gigsearch/ai"
	"github.com/gridlyapp/gigsearch/core"
)

var sampleListings = []*core.Listing{
	{Title: "Calculus tutoring", Description: "One on one calculus help, exam prep and weekly problem sets", Category: "Tutoring", University: "State University", Price: "$25/hour"},
	{Title: "Logo design", Description: "Custom logos for student clubs and small businesses, three revisions included", Category: "Design", University: "State University", Price: "$60"},
	{Title: "Dorm room moving help", Description: "Two students with a van, we carry boxes and furniture", Category: "Labor", University: "State University", Price: "$40"},
	{Title: "Essay proofreading", Description: "Grammar, structure and citation check for essays up to 5000 words", Category: "Writing", University: "City College", Price: "$15"},
	{Title: "Portrait photography", Description: "Graduation portraits and headshots, edited photos within a week", Category: "Photography", University: "City College", Price: "$80"},
	{Title: "Bike repair", Description: "Flat tires, brake adjustment and chain replacement, parts extra", Category: "Services", University: "State University", Price: "$20"},
	{Title: "Spanish conversation practice", Description: "Native speaker offering weekly conversation sessions", Category: "Tutoring", University: "City College", Price: "$18/hour"},
	{Title: "Poster and flyer design", Description: "Event posters and social media graphics with quick turnaround", Category: "Design", University: "State University", Price: "$35"},
	{Title: "Dog walking", Description: "Daily walks around campus, experienced with all breeds", Category: "Pets", University: "City College", Price: "$12"},
	{Title: "Python homework help", Description: "Debugging and code review for intro programming courses", Category: "Tutoring", University: "State University", Price: "$30/hour"},
	{Title: "Airport rides", Description: "Rides to the regional airport, luggage space for two", Category: "Transport", University: "State University", Price: "$45"},
	{Title: "Resume writing", Description: "Polished one page resume and cover letter for internship season", Category: "Writing", University: "City College", Price: "$50"},
	{Title: "Guitar lessons", Description: "Beginner friendly acoustic guitar lessons, instrument provided", Category: "Music", University: "State University", Price: "$22/hour"},
	{Title: "House cleaning", Description: "Apartment deep clean including kitchen and bathroom", Category: "Services", University: "City College", Price: "$70"},
	{Title: "Video editing", Description: "Short form video edits for club promos and course projects", Category: "Media", University: "State University", Price: "$55"},
}

var (
	dbPath         = flag.String("db", "", "path to BadgerDB database directory")
	srcFileName    = flag.String("src", "", "JSON file of listings to seed instead of the built-in samples")
	aiHost         = flag.String("ai-host", "http://localhost:11434/v1", "OpenAI-compatible host URL")
	embeddingModel = flag.String("embedding-model", "text-embedding-ada-002", "embedding model name")
	token          = flag.String("ai-token", "none", "API token for the AI host")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// listingsFromFile reads a JSON array of listings.
func listingsFromFile(filename string) ([]*core.Listing, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var listings []*core.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func main() {
	if *dbPath == "" {
		slog.Error("missing required -db flag")
		os.Exit(1)
	}

	listings := sampleListings
	if *srcFileName != "" {
		var err error
		listings, err = listingsFromFile(*srcFileName)
		if err != nil {
			slog.Error("error reading seed file", "file", *srcFileName, "err", err)
			os.Exit(1)
		}
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(*aiHost),
		ai.WithEmbeddingModel(*embeddingModel),
		ai.WithToken(*token),
	)

	svc, err := gigsearch.NewService(*dbPath, gigsearch.WithAIConfig(aiConfig))
	if err != nil {
		slog.Error("error opening service", "err", err)
		os.Exit(1)
	}
	defer svc.Close()

	ingestor, err := svc.NewIngestor()
	if err != nil {
		slog.Error("error creating ingestor", "err", err)
		os.Exit(1)
	}
	defer ingestor.Release()

	added, err := ingestor.IngestBatch(context.Background(), listings)
	if err != nil {
		slog.Error("error seeding listings", "err", err)
		os.Exit(1)
	}

	embedded := 0
	for _, listing := range added {
		if listing.HasEmbedding() {
			embedded++
		}
	}
	slog.Info("seeding complete", "listings", len(added), "embedded", embedded)
}
