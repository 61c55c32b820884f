package main

type Project struct {
	Title   string
	Summary string
}

var (
	AboutMe = `I build small, sturdy software and like knowing how every layer of it works.
	This site is one of those projects: the pages are served by a Go server, and the drifting
	lines behind them are simulated and drawn server-side, then streamed to your browser frame by frame.
	Move the pointer to pull the lines around, click to set off a burst.`

	Projects = []Project{
		{
			Title: "Backdrop engine",
			Summary: `A particle and line simulation with pointer attraction, damped motion and two
	lifecycles (recycled ambient entities, expiring click effects), rendered with gradient strokes.`,
		},
		{
			Title: "Terminal mail client",
			Summary: `A keyboard-driven email client for the terminal with fuzzy finding over
	folders and threads.`,
		},
		{
			Title: "Game recommender",
			Summary: `Content-based recommendations using TF-IDF vectors and cosine similarity,
	filterable by review score.`,
		},
		{
			Title: "This portfolio",
			Summary: `Go and Gin with HTML templates, SQLite for privacy-conscious visitor
	statistics, and a small admin dashboard.`,
		},
	}
)
