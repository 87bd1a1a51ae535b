package participant

// Participant is one hackathon attendee plus everything the pipeline learned
// about them during a single analysis run.
type Participant struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email,omitempty"`
	LinkedInURL  string          `json:"linkedinUrl,omitempty"`
	Company      string          `json:"company,omitempty"`
	LinkedInData *Profile        `json:"linkedinData,omitempty"`
	SocialMedia  *SocialProfiles `json:"socialMedia,omitempty"`
	Background   *Background     `json:"background,omitempty"`
	Score        *float64        `json:"score,omitempty"` // set only by ranking
}

// Profile is the normalized professional profile, whichever strategy
// produced it. List fields are never nil after Normalize.
type Profile struct {
	Name            string       `json:"name"`
	Headline        string       `json:"headline"`
	CurrentPosition string       `json:"currentPosition"`
	Company         string       `json:"company"`
	Location        string       `json:"location"`
	Experience      []Experience `json:"experience"`
	Education       []Education  `json:"education"`
	Skills          []string     `json:"skills"`
	About           string       `json:"about,omitempty"`
	Posts           []Post       `json:"posts"`
	ProfileURL      string       `json:"profileUrl"`
	ProfileImage    string       `json:"profileImage,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

type Education struct {
	School   string `json:"school"`
	Degree   string `json:"degree"`
	Field    string `json:"field,omitempty"`
	Duration string `json:"duration,omitempty"`
}

type Post struct {
	Content    string      `json:"content"`
	Date       string      `json:"date"`
	Engagement *Engagement `json:"engagement,omitempty"`
}

type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// SocialProfiles bundles discovered social handles. An empty bundle means
// discovery ran and found nothing; a nil *SocialProfiles means it never ran.
type SocialProfiles struct {
	Twitter *TwitterProfile `json:"twitter,omitempty"`
	GitHub  string          `json:"github,omitempty"`
	Website string          `json:"website,omitempty"`
}

type TwitterProfile struct {
	Handle       string   `json:"handle"`
	Bio          string   `json:"bio,omitempty"`
	RecentTweets []string `json:"recentTweets,omitempty"`
	Followers    *int     `json:"followers,omitempty"`
}

// Background is the projection of a profile used for similarity matching.
type Background struct {
	Schools     []string `json:"schools"`
	Companies   []string `json:"companies"`
	Internships []string `json:"internships"`
	Research    []string `json:"research"`
	Skills      []string `json:"skills"`
}

type TalkingPoint struct {
	ParticipantID   string   `json:"participantId"`
	ParticipantName string   `json:"participantName"`
	Points          []string `json:"points"`
	Source          string   `json:"source"`
}

type SimilarityMatch struct {
	Participant1     string        `json:"participant1"`
	Participant2     string        `json:"participant2"`
	Participant1Name string        `json:"participant1Name"`
	Participant2Name string        `json:"participant2Name"`
	SimilarityScore  float64       `json:"similarityScore"`
	Commonalities    Commonalities `json:"commonalities"`
}

type Commonalities struct {
	Schools   []string `json:"schools,omitempty"`
	Companies []string `json:"companies,omitempty"`
	Skills    []string `json:"skills,omitempty"`
}

type TeamSuggestion struct {
	Participants        []Participant `json:"participants"`
	Reasoning           string        `json:"reasoning"`
	ComplementarySkills []string      `json:"complementarySkills"`
}

// Progress is an ephemeral pipeline status event.
type Progress struct {
	Stage    string  `json:"stage"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
}

// Result is the terminal payload of an analysis run.
type Result struct {
	Participants       []Participant     `json:"participants"`
	HeavyHitters       []Participant     `json:"heavyHitters"`
	TalkingPoints      []TalkingPoint    `json:"talkingPoints"`
	SimilarBackgrounds []SimilarityMatch `json:"similarBackgrounds"`
	TeamSuggestions    []TeamSuggestion  `json:"teamSuggestions"`
}
