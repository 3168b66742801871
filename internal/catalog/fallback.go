package catalog

var sampleGames = []Game{
	{
		ID:               1,
		Title:            "Call Of Duty: Warzone",
		Thumbnail:        "https://www.freetogame.com/g/452/thumbnail.jpg",
		ShortDescription: "A standalone free-to-play battle royale and target extraction modes accessible via Call of Duty: Modern Warfare.",
		GameURL:          "https://www.freetogame.com/open/call-of-duty-warzone",
		Genre:            "Shooter",
		Platform:         "PC (Windows)",
		Publisher:        "Activision",
		ReleaseDate:      "2020-03-10",
	},
	{
		ID:               2,
		Title:            "PUBG: BATTLEGROUNDS",
		Thumbnail:        "https://www.freetogame.com/g/516/thumbnail.jpg",
		ShortDescription: "Get into the action in one of the longest running battle royale games PUBG Battlegrounds.",
		GameURL:          "https://www.freetogame.com/open/pubg",
		Genre:            "Shooter",
		Platform:         "PC (Windows)",
		Publisher:        "KRAFTON, Inc.",
		ReleaseDate:      "2022-01-12",
	},
	{
		ID:               3,
		Title:            "Apex Legends",
		Thumbnail:        "https://www.freetogame.com/g/2/thumbnail.jpg",
		ShortDescription: "A free-to-play strategic battle royale game featuring 60-player matches and team-based play.",
		GameURL:          "https://www.freetogame.com/open/apex-legends",
		Genre:            "Shooter",
		Platform:         "PC (Windows)",
		Publisher:        "Electronic Arts",
		ReleaseDate:      "2019-02-04",
	},
	{
		ID:               4,
		Title:            "Fortnite",
		Thumbnail:        "https://www.freetogame.com/g/33/thumbnail.jpg",
		ShortDescription: "A free-to-play Battle Royale game and target rich sandbox with fun building mechanics.",
		GameURL:          "https://www.freetogame.com/open/fortnite",
		Genre:            "Shooter",
		Platform:         "PC (Windows)",
		Publisher:        "Epic Games",
		ReleaseDate:      "2017-07-25",
	},
	{
		ID:               5,
		Title:            "League of Legends",
		Thumbnail:        "https://www.freetogame.com/g/2/thumbnail.jpg",
		ShortDescription: "One of the most popular MOBAs with a massive player base.",
		GameURL:          "https://www.freetogame.com/open/league-of-legends",
		Genre:            "MOBA",
		Platform:         "PC (Windows)",
		Publisher:        "Riot Games",
		ReleaseDate:      "2009-10-27",
	},
	{
		ID:               6,
		Title:            "Valorant",
		Thumbnail:        "https://www.freetogame.com/g/21/thumbnail.jpg",
		ShortDescription: "A 5v5 character-based tactical FPS from Riot Games.",
		GameURL:          "https://www.freetogame.com/open/valorant",
		Genre:            "Shooter",
		Platform:         "PC (Windows)",
		Publisher:        "Riot Games",
		ReleaseDate:      "2020-06-02",
	},
}

// Sample returns the built-in catalog served when the remote source is unavailable.
// Callers receive their own copy.
func Sample() []Game {
	return cloneGames(sampleGames)
}
