package rules

// Category names of the built-in tables.
const (
	CategoryToxicity           = "toxicity"
	CategoryPrivacy            = "privacy"
	CategoryPositive           = "positive"
	CategoryNegative           = "negative"
	CategoryEmotions           = "emotions"
	CategoryTriggers           = "emotional_triggers"
	CategoryEducational        = "educational"
	CategoryStory              = "story"
	CategoryLearningPhrases    = "learning_phrases"
	CategoryQuestionMarkers    = "question_markers"
	CategoryBehavioral         = "behavioral_concerns"
	CategoryConcernThemes      = "concern_themes"
	CategoryDismissive         = "dismissive"
	CategoryTopics             = "topics"
	CategoryInappropriateTopic = "inappropriate_topics"
	CategoryWarmth             = "warmth"
	CategoryEscalation         = "escalation"
	CategoryEngagement         = "engagement"
	CategoryContentMarkers     = "content_markers"

	// Bias categories share their names with model.BiasType.
	CategoryGenderBias        = "gender"
	CategoryCulturalBias      = "cultural"
	CategorySocioeconomicBias = "socioeconomic"
	CategoryAbilityBias       = "ability"
	CategoryAgeBias           = "age"
	CategoryEducationalBias   = "educational_bias"

	// Contextual assumption tables, scored against the child profile.
	CategoryGenderAssumption        = "gender_assumption"
	CategoryCulturalAssumption      = "cultural_insensitivity"
	CategoryAbilityAssumption       = "ability_assumption"
	CategorySocioeconomicAssumption = "socioeconomic_assumption"
)

// Default returns a Store populated with the built-in phrase tables.
func Default() *Store {
	return New(defaultTables()...)
}

func defaultTables() []Table {
	return []Table{
		{
			Name:      CategoryToxicity,
			Increment: 0.25,
			Patterns: map[string][]string{
				"insults":    {"stupid", "ugly", "dumb", "loser", "idiot", "shut up"},
				"hostility":  {"i hate", "hate you", "hateful", "kill you", "killing", "hurt"},
				"violence":   {"violence", "weapon", "blood"},
				"fear":       {"scary", "afraid", "monster", "nightmare"},
				"negativity": {"terrible", "awful", "horrible"},
				"adult":      {"sexy", "explicit", "porn", "drugs", "alcohol"},
			},
		},
		{
			Name:      CategoryPrivacy,
			Increment: 1,
			Patterns: map[string][]string{
				"personal_data": {
					"address", "phone", "password", "secret", "location",
					"where you live", "personal information", "real name",
					"full name", "school name",
				},
			},
		},
		{
			Name:      CategoryPositive,
			Increment: 0.15,
			Patterns: map[string][]string{
				"positive": {
					"happy", "joy", "love", "good", "great", "wonderful",
					"amazing", "fun", "exciting", "beautiful", "nice", "kind",
					"brilliant", "awesome", "fantastic", "excellent", "proud",
				},
			},
		},
		{
			Name:      CategoryNegative,
			Increment: 0.15,
			Patterns: map[string][]string{
				"negative": {
					"sad", "angry", "i hate", "bad", "terrible", "awful",
					"scary", "frightening", "hurt", "pain", "upset",
				},
			},
		},
		{
			Name: CategoryEmotions,
			Patterns: map[string][]string{
				"joy":      {"happy", "excited", "fun", "laughing", "cheerful"},
				"sadness":  {"sad", "crying", "upset", "disappointed", "lonely"},
				"fear":     {"scared", "afraid", "frightened", "worried", "anxious"},
				"anger":    {"angry", "furious", "frustrated", "annoyed"},
				"surprise": {"surprised", "amazed", "wow", "unexpected"},
				"disgust":  {"yucky", "gross", "eww", "disgusting"},
			},
		},
		{
			Name: CategoryTriggers,
			Patterns: map[string][]string{
				"abandonment":         {"left behind", "no one cares", "forgotten", "all alone"},
				"fear_inducing":       {"monster", "scary", "nightmare", "in the dark", "ghost"},
				"body_image":          {"too fat", "ugly", "skinny", "weird looking"},
				"performance_anxiety": {"stupid", "dumb", "can't do", "failure"},
				"social_rejection":    {"no friends", "nobody likes", "outcast", "lonely"},
			},
		},
		{
			Name:      CategoryEducational,
			Increment: 0.1,
			Patterns: map[string][]string{
				"core":      {"learn", "study", "teach", "reading", "write", "color", "shape", "animal", "number", "letter"},
				"interact":  {"favorite", "explain", "discover", "explore"},
				"creative":  {"book", "sing", "song", "imagine", "create", "draw", "picture"},
				"subjects":  {"math", "science", "nature", "history", "music"},
				"social":    {"friend", "family", "share"},
				"cognitive": {"think", "remember", "practice", "solve", "question", "answer", "understand"},
				"emotional": {"feel", "happy", "brave", "curious"},
			},
		},
		{
			Name:      CategoryStory,
			Increment: 0.08,
			Patterns: map[string][]string{
				"narrative":  {"once upon", "story", "tale", "adventure", "journey", "character", "hero"},
				"fantasy":    {"princess", "prince", "dragon", "magic", "fairy", "castle"},
				"places":     {"forest", "ocean"},
				"characters": {"bunny", "rabbit", "bear", "elephant"},
			},
		},
		{
			Name:      CategoryLearningPhrases,
			Increment: 0.15,
			Patterns: map[string][]string{
				"invitations": {"let's learn", "let's count", "let's play", "let's sing", "tell me about"},
				"preferences": {"favorite color", "favorite animal"},
			},
		},
		{
			Name: CategoryQuestionMarkers,
			Patterns: map[string][]string{
				"interrogative": {"what", "how", "why", "can you"},
			},
		},
		{
			Name:      CategoryBehavioral,
			Increment: 1,
			Patterns: map[string][]string{
				"secrecy_request": {
					"don't tell your parents", "don't tell anyone", "keep it a secret",
					"our little secret", "just between us",
				},
				"isolation_request": {
					"you don't need your parents", "only i understand you",
					"your parents don't understand", "stay away from your family",
					"don't play with your friends",
				},
				"meeting_request": {"meet me", "come alone", "let's meet", "i'll pick you up"},
				"personal_info_request": {
					"what's your address", "where do you live", "what school do you go to",
					"send me a picture", "what's your phone number",
				},
			},
		},
		{
			Name: CategoryConcernThemes,
			Patterns: map[string][]string{
				"loneliness": {"alone", "lonely", "no friends"},
				"sadness":    {"sad", "cry", "upset"},
				"fear":       {"scared", "afraid", "nightmare"},
				"anger":      {"angry", "mad at", "i hate"},
			},
		},
		{
			Name: CategoryDismissive,
			Patterns: map[string][]string{
				"dismissive": {"whatever", "i don't care", "who cares", "that's boring", "stop asking"},
			},
		},
		{
			Name: CategoryTopics,
			Patterns: map[string][]string{
				"animals": {"dog", "cat", "bird", "animal", "bunny"},
				"colors":  {"red", "blue", "green", "color"},
				"numbers": {"one", "two", "count", "number"},
				"games":   {"play", "game", "toy", "fun"},
			},
		},
		{
			Name: CategoryInappropriateTopic,
			Patterns: map[string][]string{
				"adult":    {"dating", "kissing", "boyfriend", "girlfriend", "beer"},
				"violence": {"a gun", "the war", "fighting", "knife"},
				"danger":   {"stranger", "run away from home", "play with fire"},
			},
		},
		{
			Name: CategoryWarmth,
			Patterns: map[string][]string{
				"warm": {"love", "care", "friend", "nice", "kind", "sweet", "happy", "wonderful", "great", "good job", "well done"},
			},
		},
		{
			Name: CategoryEscalation,
			Patterns: map[string][]string{
				"escalation": {"angry", "mad at", "i hate", "hurt", "bad", "scary", "afraid"},
			},
		},
		{
			Name: CategoryEngagement,
			Patterns: map[string][]string{
				"interactive": {"?", "what", "how", "can you", "let's"},
			},
		},
		{
			Name: CategoryContentMarkers,
			Patterns: map[string][]string{
				"story":         {"once upon", "story", "tale", "adventure"},
				"game":          {"game", "let's play", "puzzle", "riddle", "guess"},
				"entertainment": {"joke", "funny", "silly", "song", "dance"},
			},
		},
		{
			Name:      CategoryGenderBias,
			Increment: 0.25,
			Patterns: map[string][]string{
				"male_bias": {
					"boys are better at", "boys are naturally", "men are stronger",
					"boys like trucks", "boys don't cry", "be a big boy", "man up",
					"boys will be boys", "real men", "like a man", "boys are tough",
				},
				"female_bias": {
					"girls are better at", "girls are naturally", "girls like dolls",
					"girls are gentle", "girls should be quiet", "pretty girl",
					"girls wear pink", "like a lady", "girls are emotional", "girls are soft",
				},
				"gender_stereotypes": {
					"boys only", "girls only", "for boys", "for girls", "than girls",
					"than boys", "masculine", "feminine", "gender role", "traditional role",
				},
				"innate_ability": {"naturally better", "better at math", "better at science", "bad at math"},
			},
		},
		{
			Name:      CategoryCulturalBias,
			Increment: 0.25,
			Patterns: map[string][]string{
				"western_bias": {
					"normal food", "weird food", "strange customs", "our way",
					"civilized", "primitive", "backward", "advanced culture",
				},
				"religious_bias": {
					"wrong religion", "better faith", "false beliefs", "true religion",
					"infidel", "heathen", "godless", "religious superiority",
				},
				"ethnic_stereotypes": {
					"all people from", "those people", "typical of", "they always",
					"ethnic trait", "racial characteristic", "cultural deficiency",
				},
				"language_bias": {
					"speak properly", "broken english", "foreign accent", "real language",
					"primitive language", "inferior dialect",
				},
			},
		},
		{
			Name:      CategorySocioeconomicBias,
			Increment: 0.25,
			Patterns: map[string][]string{
				"wealth_bias": {
					"poor people", "rich people", "can't afford", "expensive taste",
					"cheap things", "lower class", "upper class", "money problems",
				},
				"education_bias": {
					"uneducated", "ignorant", "smart people", "dumb people",
					"educated guess", "higher learning", "simple minded",
				},
				"status_bias": {
					"important family", "nobody special", "social climbing",
					"beneath us", "above their station", "know your place",
				},
			},
		},
		{
			Name:      CategoryAbilityBias,
			Increment: 0.25,
			Patterns: map[string][]string{
				"physical_ability": {
					"normal people", "disabled person", "handicapped", "crippled",
					"able-bodied", "defective", "broken person", "invalid",
				},
				"cognitive_ability": {
					"retarded", "slow kid", "mental case", "crazy",
					"smart people", "dumb people", "intelligent vs", "brain dead",
				},
				"learning_differences": {
					"learning disabled", "special needs", "can't learn", "hopeless case",
					"normal learner", "gifted vs regular", "behind others",
				},
			},
		},
		{
			Name:      CategoryAgeBias,
			Increment: 0.25,
			Patterns: map[string][]string{
				"youth_bias": {
					"too young to", "when you grow up", "children don't understand",
					"wait until you're older", "adult matters", "not for kids",
				},
				"maturity_assumptions": {
					"act your age", "childish", "immature", "baby behavior", "too old for",
				},
			},
		},
		{
			Name:      CategoryEducationalBias,
			Increment: 0.25,
			Patterns: map[string][]string{
				"academic_elitism": {
					"smart schools", "good students", "academic superiority",
					"intellectual elite", "educational background", "school ranking",
				},
				"learning_bias": {
					"fast learner", "slow learner", "gifted child", "average student",
					"academic potential", "learning capacity", "intellectual level",
				},
			},
		},
		{
			Name:      CategoryGenderAssumption,
			Increment: 0.3,
			Patterns: map[string][]string{
				"assumption": {
					"girls like", "boys like", "for girls", "for boys",
					"because you're a girl", "because you're a boy",
				},
			},
		},
		{
			Name:      CategoryCulturalAssumption,
			Increment: 0.25,
			Patterns: map[string][]string{
				"assumption": {
					"in our culture", "normal families", "typical children",
					"everyone celebrates", "all families have",
				},
			},
		},
		{
			Name:      CategoryAbilityAssumption,
			Increment: 0.2,
			Patterns: map[string][]string{
				"assumption": {"you can see", "you can hear", "you can walk", "look at", "listen to", "run and play"},
			},
		},
		{
			Name:      CategorySocioeconomicAssumption,
			Increment: 0.2,
			Patterns: map[string][]string{
				"assumption": {"buy this", "ask your parents to buy", "expensive toy", "go on vacation", "your car", "your house"},
			},
		},
	}
}
