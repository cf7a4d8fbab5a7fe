package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"devconnect/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var statuses = []string{
	"Developer", "Junior Developer", "Senior Developer",
	"Manager", "Student or Learning", "Instructor or Teacher", "Intern",
}

var skillPool = []string{
	"Go", "JavaScript", "TypeScript", "Python", "HTML", "CSS", "React",
	"Node.js", "PostgreSQL", "Redis", "Docker", "Kubernetes", "AWS", "GraphQL",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db}
}

// CreateUser constructs and persists a sample user. All seeded accounts share
// the password "password123" so any of them can be logged into during
// development.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	email := gofakeit.Email()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    email,
		Password: string(hashed),
		Avatar:   models.GravatarURL(email),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProfile persists a profile for the user, with a handful of skills
// and one or two experience and education entries.
func (f *Factory) CreateProfile(user *models.User, overrides ...func(*models.Profile)) (*models.Profile, error) {
	skills := pickSkills(2 + rand.Intn(4))

	profile := &models.Profile{
		UserID:         user.ID,
		Status:         statuses[rand.Intn(len(statuses))],
		Company:        gofakeit.Company(),
		Website:        gofakeit.URL(),
		Location:       fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr()),
		Bio:            gofakeit.Sentence(12),
		GithubUsername: strings.ToLower(gofakeit.Username()),
		Skills:         datatypes.NewJSONSlice(skills),
		Social: models.Social{
			Twitter:  fmt.Sprintf("https://twitter.com/%s", strings.ToLower(gofakeit.Username())),
			Linkedin: fmt.Sprintf("https://linkedin.com/in/%s", strings.ToLower(gofakeit.Username())),
		},
	}
	for _, override := range overrides {
		override(profile)
	}

	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}

	for i := 0; i < 1+rand.Intn(2); i++ {
		if err := f.addExperience(profile); err != nil {
			return nil, err
		}
	}
	if rand.Intn(2) == 0 {
		if err := f.addEducation(profile); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (f *Factory) addExperience(profile *models.Profile) error {
	from := gofakeit.DateRange(
		time.Now().AddDate(-8, 0, 0), time.Now().AddDate(-1, 0, 0))
	exp := &models.Experience{
		ProfileID:   profile.ID,
		Title:       gofakeit.JobTitle(),
		Company:     gofakeit.Company(),
		Location:    gofakeit.City(),
		From:        from,
		Current:     rand.Intn(2) == 0,
		Description: gofakeit.Sentence(15),
	}
	if !exp.Current {
		to := gofakeit.DateRange(from, time.Now())
		exp.To = &to
	}
	return f.db.Create(exp).Error
}

func (f *Factory) addEducation(profile *models.Profile) error {
	from := time.Now().AddDate(-10, 0, 0)
	to := from.AddDate(4, 0, 0)
	edu := &models.Education{
		ProfileID:    profile.ID,
		School:       fmt.Sprintf("%s University", gofakeit.City()),
		Degree:       "BSc",
		FieldOfStudy: "Computer Science",
		From:         from,
		To:           &to,
	}
	return f.db.Create(edu).Error
}

// CreatePost persists a post authored by the user, with a realistic
// created_at spread over the last 90 days.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID: user.ID,
		Text:   gofakeit.Paragraph(1, 2, 8, " "),
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	post.CreatedAt = time.Now().Add(
		-time.Duration(rand.Intn(90*24)) * time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// LikePost records a like, ignoring duplicates.
func (f *Factory) LikePost(post *models.Post, user *models.User) error {
	like := &models.Like{PostID: post.ID, UserID: user.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CommentOnPost appends a comment with the commenter's snapshot.
func (f *Factory) CommentOnPost(post *models.Post, user *models.User) error {
	comment := &models.Comment{
		PostID: post.ID,
		UserID: user.ID,
		Text:   gofakeit.Sentence(10),
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	return f.db.Create(comment).Error
}

func pickSkills(n int) []string {
	if n > len(skillPool) {
		n = len(skillPool)
	}
	perm := rand.Perm(len(skillPool))
	skills := make([]string, 0, n)
	for _, idx := range perm[:n] {
		skills = append(skills, skillPool[idx])
	}
	return skills
}
