package main

import "time"

type seedUser struct {
	Email       string
	DisplayName string
	Age         time.Duration
	Tags        []string
	Items       []seedItem
}

type seedItem struct {
	Title    string
	Kind     string
	Status   string
	Priority string
	Notes    string
	Created  time.Duration // before the seed time
	Updated  time.Duration // before the seed time
	Tags     []string
}

const day = 24 * time.Hour

func buildSeedUsers() []seedUser {
	return []seedUser{
		{
			Email:       "alice@example.com",
			DisplayName: "Alice Reader",
			Age:         30 * day,
			Tags:        []string{"python", "sci-fi", "technical", "fantasy"},
			Items: []seedItem{
				{"Clean Code: A Handbook of Agile Software Craftsmanship", "book", "done", "high",
					"Great book on clean code with many practical examples.", 25 * day, 10 * day, []string{"technical"}},
				{"The Hitchhiker's Guide to the Galaxy", "book", "reading", "normal",
					"Funny science fiction.", 15 * day, 3 * day, []string{"sci-fi"}},
				{"Understanding Python Decorators", "article", "done", "high",
					"A clear explanation of decorators.", 10 * day, 9 * day, []string{"python", "technical"}},
				{"Dune", "book", "planned", "normal",
					"Science fiction classic.", 5 * day, 5 * day, []string{"sci-fi", "fantasy"}},
				{"FastAPI Best Practices", "article", "reading", "high",
					"", 2 * day, 1 * day, []string{"python", "technical"}},
			},
		},
		{
			Email:       "bob@example.com",
			DisplayName: "Bob Bookworm",
			Age:         20 * day,
			Tags:        []string{"history", "biography", "programming"},
			Items: []seedItem{
				{"Sapiens: A Brief History of Humankind", "book", "reading", "high",
					"A gripping history of humankind.", 18 * day, 2 * day, []string{"history"}},
				{"The Pragmatic Programmer", "book", "planned", "normal",
					"", 12 * day, 12 * day, []string{"programming"}},
				{"Introduction to Machine Learning", "article", "done", "low",
					"A basic introduction.", 7 * day, 6 * day, []string{"programming"}},
			},
		},
	}
}
