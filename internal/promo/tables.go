package promo

// Review is a testimonial shown in the promo modal.
type Review struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Rating string `json:"rating"`
	Time   string `json:"time"`
}

// ReviewsPerPayload is how many distinct reviews each payload carries.
const ReviewsPerPayload = 3

// Bounds of the uniform integer fields of a Payload, inclusive.
const (
	MinAlreadySold      = 1542
	MaxAlreadySold      = 9876
	MinSatisfactionRate = 96
	MaxSatisfactionRate = 100
	MinCountdownSeconds = 5
	MaxCountdownSeconds = 15
)

// Prices is the weighted price table. Order matters for the cumulative walk.
var Prices = []Weighted[string]{
	{Item: "$0.00", Weight: 30},
	{Item: "$0.01", Weight: 20},
	{Item: "$1.99", Weight: 15},
	{Item: "$4.99", Weight: 10},
	{Item: "$9.99", Weight: 8},
	{Item: "$19.99", Weight: 6},
	{Item: "$99.99", Weight: 5},
	{Item: "$999.99", Weight: 4},
	{Item: "FREE", Weight: 2},
}

// Reviews is the pool reviews are sampled from.
var Reviews = []Review{
	{Name: "Alexey P.", Text: "Best calculator ever! The PRO version changed my life!", Rating: "★★★★★", Time: "2 hours ago"},
	{Name: "Maria S.", Text: "I count faster than my colleagues now! The equals button is pure magic!", Rating: "★★★★★", Time: "Yesterday"},
	{Name: "Dmitry K.", Text: "I hesitated for a long time but no regrets. PRO is worth every cent (even though it's free).", Rating: "★★★★☆", Time: "3 days ago"},
	{Name: "Olga V.", Text: "Switched from a regular calculator. No regrets! The interface got prettier.", Rating: "★★★★★", Time: "A week ago"},
	{Name: "Ivan G.", Text: "My kids do their homework twice as fast now! Thanks for PRO!", Rating: "★★★★★", Time: "2 weeks ago"},
	{Name: "Sergey M.", Text: "Finally I can use the equals button! I used to have to guess the result.", Rating: "★★★★★", Time: "A month ago"},
	{Name: "Anna L.", Text: "Bought PRO for $999.99 and don't regret it! Just kidding, it's free 😂", Rating: "★★★★★", Time: "Just now"},
	{Name: "Pavel R.", Text: "My salary went up after activating PRO! Coincidence? I think not!", Rating: "★★★★★", Time: "5 minutes ago"},
}

var jokes = []string{
	"Why did the calculator see a therapist? It had too many complex issues!",
	"What did the calculator say to its wife? 'Darling, you are simply irrational!'",
	"Why is the calculator a bad dancer? It's always counting the steps!",
	"How does a calculator say I love you? 'You plus my life equals happiness!'",
	"Why doesn't the calculator play hide and seek? It always gets found by its decimal points!",
	"What did the calculator say on a date? 'Let's add our hearts together!'",
}
