// Package recommend selects learning resources for a user's weak areas.
package recommend

// Resource is a recommended course or learning path.
type Resource struct {
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	Description     string   `json:"description"`
	TopicsCovered   []string `json:"topics_covered"`
	DifficultyLevel string   `json:"difficulty_level"`
}

// Source names the tier that produced a result.
type Source string

const (
	SourceNone            Source = "none"
	SourceLive            Source = "live"
	SourceCatalogFiltered Source = "catalog_filtered"
	SourceCatalogAll      Source = "catalog_all"
)

// DefaultCatalog is the curated fallback list.
var DefaultCatalog = []Resource{
	{
		Title:           "Introduction to Data Science",
		URL:             "https://www.ibm.com/training/path/data-science-foundations",
		Description:     "A popular introductory course covering the basics of data science.",
		TopicsCovered:   []string{"data science"},
		DifficultyLevel: "beginner",
	},
	{
		Title:           "Machine Learning Crash Course",
		URL:             "https://developers.google.com/machine-learning/crash-course",
		Description:     "Google's fast-paced, practical introduction to machine learning.",
		TopicsCovered:   []string{"machine learning"},
		DifficultyLevel: "intermediate",
	},
	{
		Title:           "Deep Learning Specialization",
		URL:             "https://www.coursera.org/specializations/deep-learning",
		Description:     "A comprehensive program by Andrew Ng on deep learning concepts and applications.",
		TopicsCovered:   []string{"deep learning"},
		DifficultyLevel: "advanced",
	},
	{
		Title:           "Statistics for Data Science",
		URL:             "https://www.edx.org/course/statistics-and-r",
		Description:     "Learn statistical concepts essential for data analysis using R.",
		TopicsCovered:   []string{"statistics"},
		DifficultyLevel: "intermediate",
	},
	{
		Title:           "Data Engineering with Google Cloud",
		URL:             "https://www.cloudskillsboost.google/paths/16",
		Description:     "Master data engineering skills using Google Cloud Platform.",
		TopicsCovered:   []string{"data engineering"},
		DifficultyLevel: "intermediate",
	},
	{
		Title:           "AI Ethics: Global Perspectives",
		URL:             "https://www.coursera.org/learn/ai-ethics",
		Description:     "Explore ethical considerations and societal impacts of artificial intelligence.",
		TopicsCovered:   []string{"AI ethics"},
		DifficultyLevel: "intermediate",
	},
}
