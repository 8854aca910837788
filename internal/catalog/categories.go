package catalog

import "fantasy-ai/backend/internal/model"

// categories is the built-in list of assistant categories shown on the home screen.
// Every category doubles as a default character with the same id.
var categories = []model.Category{
	{ID: 1, Title: "Self-Growth", Description: "Become a better version of yourself", Group: "Personal", SubTasks: []string{
		"Help me set a goal for this week.",
		"Suggest a book about overcoming procrastination.",
		"Give me a 5-minute mindfulness exercise.",
	}},
	{ID: 2, Title: "Lifestyle", Description: "Fill your life with purpose and joy", Group: "Personal", SubTasks: []string{
		"Suggest a new hobby based on my interests.",
		"Give me ideas for a relaxing weekend.",
		"How can I incorporate more joy into my daily routine?",
	}},
	{ID: 3, Title: "Spirituality", Description: "Enrich your life with wisdom", Group: "Personal", SubTasks: []string{
		"Explain the concept of mindfulness.",
		"Share a quote about inner peace.",
		"Suggest a simple meditation technique.",
	}},
	{ID: 4, Title: "Fitness", Description: "Achieve your fitness goals", Group: "Health", SubTasks: []string{
		"Create a 15-minute home workout plan.",
		"What are the benefits of stretching daily?",
		"Suggest healthy post-workout snacks.",
	}},
	{ID: 13, Title: "Nutrition", Description: "Eat healthy and feel great", Group: "Health", SubTasks: []string{
		"Give me ideas for healthy breakfasts.",
		"Explain the benefits of drinking more water.",
		"Suggest ways to reduce sugar intake.",
	}},
	{ID: 5, Title: "Career", Description: "Get your work done faster", Group: "Professional", SubTasks: []string{
		"Help me prepare for a performance review.",
		"How can I improve my time management skills?",
		"Draft a professional email asking for feedback.",
	}},
	{ID: 6, Title: "Emails and Communication", Description: "Craft emails in seconds", Group: "Professional", SubTasks: []string{
		"Draft a follow-up email after a meeting.",
		"Help me write a polite decline email.",
		"Give tips for clear and concise communication.",
	}},
	{ID: 7, Title: "Relationships", Description: "Build stronger connections", Group: "Personal"},
	{ID: 8, Title: "Mental Health", Description: "Calm your mind and reduce stress", Group: "Health"},
	{ID: 9, Title: "Finance", Description: "Manage your money efficiently", Group: "Professional"},
	{ID: 10, Title: "Education", Description: "Learn new skills and concepts", Group: "Professional"},
	{ID: 11, Title: "Creativity", Description: "Unlock your creative potential", Group: "Personal"},
	{ID: 12, Title: "Productivity", Description: "Get more done in less time", Group: "Professional"},
	{ID: 14, Title: "Travel Planner", Description: "Plan your next adventure", Group: "Lifestyle", SubTasks: []string{
		"Suggest destinations for a weekend trip.",
		"Create a packing list for a beach vacation.",
		"Find budget-friendly travel tips.",
	}},
	{ID: 15, Title: "Resume Builder", Description: "Craft professional resumes & letters", Group: "Professional", SubTasks: []string{
		"Help me write a summary for my resume.",
		"What are common resume mistakes to avoid?",
		"Draft a cover letter template.",
	}},
	{ID: 16, Title: "Industry Research", Description: "Analyze market trends & insights", Group: "Professional", SubTasks: []string{
		"Summarize recent trends in the tech industry.",
		"Find statistics about renewable energy growth.",
		"Who are the key competitors in the e-commerce market?",
	}},
	{ID: 17, Title: "Interview Prep", Description: "Ace your next job interview", Group: "Professional", SubTasks: []string{
		"Give me common behavioral interview questions.",
		"Help me practice the STAR method for answering questions.",
		"What questions should I ask the interviewer?",
	}},
	{ID: 18, Title: "Language Learning", Description: "Master a new language", Group: "Learning"},
	{ID: 19, Title: "Tutoring", Description: "Get help with any subject", Group: "Learning"},
	{ID: 20, Title: "Writing Assistance", Description: "Improve your writing skills", Group: "Professional"},
	{ID: 21, Title: "Social Media", Description: "Craft engaging posts & captions", Group: "Professional"},
	{ID: 22, Title: "Decision Support", Description: "Make informed choices", Group: "Personal"},
	{ID: 23, Title: "Meal Planner", Description: "Personalized recipes & meal plans", Group: "Lifestyle"},
	{ID: 24, Title: "Personal Stylist", Description: "Shopping advice & style tips", Group: "Lifestyle"},
}

// categoryTypes maps a lower-cased category title to the character type stored in the characters table.
var categoryTypes = map[string]string{
	"fitness":                  "wellness_guide",
	"nutrition":                "wellness_guide",
	"mental health":            "wellness_guide",
	"career":                   "career_helper",
	"education":                "study_partner",
	"creativity":               "creative_buddy",
	"productivity":             "problem_solver",
	"relationships":            "social_coach",
	"finance":                  "problem_solver",
	"lifestyle":                "life_coach",
	"spirituality":             "wellness_guide",
	"self-growth":              "life_coach",
	"emails and communication": "career_helper",
	"travel planner":           "problem_solver",
	"resume builder":           "career_helper",
	"industry research":        "problem_solver",
	"interview prep":           "career_helper",
	"language learning":        "study_partner",
	"tutoring":                 "study_partner",
	"writing assistance":       "creative_buddy",
	"social media":             "creative_buddy",
	"decision support":         "problem_solver",
	"meal planner":             "wellness_guide",
	"personal stylist":         "life_coach",
}
