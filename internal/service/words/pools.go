package words

const CATEGORY_RANDOM = "random"

type Category struct {
	ID    string `json:"id"`
	Emoji string `json:"emoji"`
	Size  int    `json:"size"`
}

// 分类的展示顺序
var categoryOrder = []string{
	"animals",
	"countries",
	"food",
	"football",
	"movies",
	"celebrities",
	"jobs",
	"clothes",
	"cartoons",
	"games",
	"things",
	CATEGORY_RANDOM,
}

var categoryEmoji = map[string]string{
	"animals":       "🦁",
	"countries":     "🌍",
	"food":          "🍔",
	"football":      "⚽",
	"movies":        "🎬",
	"celebrities":   "⭐",
	"jobs":          "👷",
	"clothes":       "👕",
	"cartoons":      "📺",
	"games":         "🎮",
	"things":        "📱",
	CATEGORY_RANDOM: "🎲",
}

var builtinPools = map[string][]string{
	"animals": {
		"lion", "tiger", "elephant", "giraffe", "monkey", "bear", "wolf", "fox", "rabbit", "deer",
		"horse", "camel", "cow", "sheep", "chicken", "duck", "eagle", "falcon", "owl", "parrot",
		"crocodile", "turtle", "snake", "lizard", "frog", "dolphin", "whale", "shark", "octopus", "butterfly",
		"bee", "spider", "scorpion", "ant", "beetle", "cheetah", "rhino", "hippo", "panda", "koala",
		"kangaroo", "penguin", "llama", "peacock", "donkey", "cat", "dog", "pigeon", "crow", "ostrich",
	},
	"countries": {
		"Egypt", "Saudi Arabia", "UAE", "Kuwait", "Qatar", "Bahrain", "Oman", "Iraq", "Jordan", "Lebanon",
		"Syria", "Palestine", "Yemen", "Libya", "Tunisia", "Algeria", "Morocco", "Sudan", "Mauritania", "Somalia",
		"USA", "Britain", "France", "Germany", "Italy", "Spain", "Brazil", "Argentina", "Japan", "China",
		"Korea", "India", "Turkey", "Iran", "Russia", "Canada", "Australia", "Mexico", "Thailand", "Malaysia",
	},
	"food": {
		"kabsa", "mandi", "biryani", "shawarma", "falafel", "hummus", "koshari", "stuffed vine leaves", "molokhia", "musakhan",
		"mansaf", "kunafa", "baklava", "basbousa", "chocolate", "ice cream", "cake", "pizza", "burger", "hot dog",
		"sushi", "noodles", "rice", "pasta", "salad", "soup", "sandwich", "pie", "croissant", "donut",
	},
	"football": {
		"Messi", "Ronaldo", "Neymar", "Mbappe", "Haaland", "Salah", "Benzema", "Modric", "Kroos", "Ramos",
		"Beckham", "Ronaldinho", "Zidane", "Henry", "Maradona", "Pele", "Neuer", "Lewandowski", "De Bruyne", "Van Dijk",
	},
	"movies": {
		"Titanic", "Avatar", "The Lion King", "Aladdin", "Frozen", "Spider-Man", "Batman", "Superman", "Harry Potter", "The Lord of the Rings",
		"The Avengers", "Iron Man", "Joker", "Inception", "Interstellar", "The Matrix", "John Wick", "Star Wars", "Cars", "Finding Nemo",
	},
	"celebrities": {
		"Mohammed Abdu", "Abdul Majeed Abdullah", "Umm Kulthum", "Fairuz", "Kadim Al Sahir", "Nancy Ajram", "Tamer Hosny", "Amr Diab", "The Rock", "Will Smith",
		"Leonardo DiCaprio", "Elon Musk", "Bill Gates", "Adel Emam", "Nasser Al Qasabi",
	},
	"jobs": {
		"doctor", "engineer", "teacher", "lawyer", "pilot", "astronaut", "police officer", "firefighter", "chef", "barber",
		"carpenter", "electrician", "driver", "pharmacist", "programmer", "designer", "accountant", "film director", "journalist", "judge",
	},
	"clothes": {
		"thobe", "shemagh", "bisht", "abaya", "dress", "skirt", "shirt", "trousers", "jeans", "t-shirt",
		"jacket", "coat", "shoes", "hat", "glasses", "watch", "bag", "pajamas", "necktie", "shorts",
	},
	"cartoons": {
		"SpongeBob", "Tom and Jerry", "Captain Tsubasa", "Detective Conan", "Dragon Ball", "Naruto", "One Piece", "Ben 10", "Mickey Mouse", "Scooby-Doo",
		"Pokemon", "Looney Tunes", "Gumball", "Bugs Bunny", "Miraculous Ladybug",
	},
	"games": {
		"Minecraft", "Fortnite", "PUBG", "Call of Duty", "FIFA", "Valorant", "Among Us", "Roblox", "Mario", "Zelda",
		"Clash of Clans", "Genshin Impact", "God of War", "Assassin's Creed", "Resident Evil",
	},
	"things": {
		"phone", "laptop", "television", "fridge", "car", "airplane", "camera", "watch", "glasses", "bag",
		"key", "pen", "book", "chair", "mirror", "umbrella", "shoe", "ring", "perfume", "headphones",
	},
	CATEGORY_RANDOM: {
		"school", "hospital", "airport", "mosque", "stadium", "beach", "mountain", "desert", "sea", "island",
		"moon", "football", "chess", "YouTube", "WhatsApp", "party", "wedding", "Eid", "Ramadan", "rainbow",
	},
}
