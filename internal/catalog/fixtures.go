package catalog

import "github.com/54b3r/edurec-go/internal/domain"

// Content returns the built-in ten-item catalogue.
func Content() []domain.ContentItem {
	return []domain.ContentItem{
		{
			ID:    1,
			Title: "Introduction to Kubernetes for ML Engineers",
			Description: "Hands-on deployment walkthrough using Docker and Kubernetes. " +
				"Covers pod creation, service exposure, and scaling ML inference endpoints.",
			Difficulty:      domain.DifficultyIntermediate,
			DurationMinutes: 45,
			Tags:            []string{"kubernetes", "ml", "deployment", "docker"},
			Format:          domain.FormatVideo,
		},
		{
			ID:    2,
			Title: "Python for Data Science – From Zero to Pandas",
			Description: "Beginner-friendly course covering Python basics, NumPy arrays, " +
				"and Pandas DataFrames for exploratory data analysis.",
			Difficulty:      domain.DifficultyBeginner,
			DurationMinutes: 60,
			Tags:            []string{"python", "data-science", "pandas", "numpy"},
			Format:          domain.FormatLecture,
		},
		{
			ID:    3,
			Title: "Deep Learning Fundamentals with PyTorch",
			Description: "Build neural networks from scratch using PyTorch. Covers " +
				"tensors, autograd, CNNs, and training loops with real datasets.",
			Difficulty:      domain.DifficultyIntermediate,
			DurationMinutes: 90,
			Tags:            []string{"deep-learning", "pytorch", "neural-networks", "ml"},
			Format:          domain.FormatVideo,
		},
		{
			ID:    4,
			Title: "MLOps Pipeline Design Patterns",
			Description: "Slide deck covering CI/CD for ML models, feature stores, " +
				"model registries, and monitoring in production.",
			Difficulty:      domain.DifficultyAdvanced,
			DurationMinutes: 30,
			Tags:            []string{"mlops", "ci-cd", "deployment", "monitoring"},
			Format:          domain.FormatSlides,
		},
		{
			ID:    5,
			Title: "Natural Language Processing with Transformers",
			Description: "Understand attention mechanisms, BERT, and GPT architectures. " +
				"Includes fine-tuning a text classifier on custom data.",
			Difficulty:      domain.DifficultyAdvanced,
			DurationMinutes: 75,
			Tags:            []string{"nlp", "transformers", "bert", "ml"},
			Format:          domain.FormatLecture,
		},
		{
			ID:    6,
			Title: "Data Engineering with Apache Spark",
			Description: "Process large-scale datasets using PySpark. Covers RDDs, " +
				"DataFrames, Spark SQL, and integration with cloud storage.",
			Difficulty:      domain.DifficultyIntermediate,
			DurationMinutes: 50,
			Tags:            []string{"data-engineering", "spark", "python", "big-data"},
			Format:          domain.FormatVideo,
		},
		{
			ID:    7,
			Title: "Git & GitHub for Collaborative Projects",
			Description: "Learn branching strategies, pull requests, merge conflicts, " +
				"and GitHub Actions for automating workflows.",
			Difficulty:      domain.DifficultyBeginner,
			DurationMinutes: 25,
			Tags:            []string{"git", "github", "collaboration", "ci-cd"},
			Format:          domain.FormatSlides,
		},
		{
			ID:    8,
			Title: "Building REST APIs with FastAPI",
			Description: "Create production-ready REST APIs with FastAPI. Covers path " +
				"parameters, Pydantic validation, async handlers, and OpenAPI docs.",
			Difficulty:      domain.DifficultyIntermediate,
			DurationMinutes: 40,
			Tags:            []string{"fastapi", "python", "api", "backend"},
			Format:          domain.FormatVideo,
		},
		{
			ID:    9,
			Title: "AI Model Deployment on AWS SageMaker",
			Description: "Step-by-step guide to packaging, deploying, and A/B testing " +
				"ML models on AWS SageMaker with auto-scaling.",
			Difficulty:      domain.DifficultyAdvanced,
			DurationMinutes: 55,
			Tags:            []string{"aws", "sagemaker", "deployment", "ml"},
			Format:          domain.FormatLecture,
		},
		{
			ID:    10,
			Title: "Prompt Engineering for Large Language Models",
			Description: "Master prompt design techniques: few-shot, chain-of-thought, " +
				"and system prompts for ChatGPT, Claude, and open-source LLMs.",
			Difficulty:      domain.DifficultyBeginner,
			DurationMinutes: 35,
			Tags:            []string{"llm", "prompt-engineering", "ai", "nlp"},
			Format:          domain.FormatSlides,
		},
	}
}

// Users returns the three built-in learner personas.
func Users() []domain.UserProfile {
	return []domain.UserProfile{
		{
			UserID:              "u1",
			Name:                "Alice",
			Goal:                "Learn to deploy ML models into production using Kubernetes and cloud platforms",
			LearningStyle:       domain.StyleVisual,
			PreferredDifficulty: domain.DifficultyIntermediate,
			TimePerDay:          60,
			ViewedContentIDs:    []int{1},
			InterestTags:        []string{"ml", "deployment", "kubernetes", "docker"},
		},
		{
			UserID:              "u2",
			Name:                "Bob",
			Goal:                "Transition from software engineering to data science and machine learning",
			LearningStyle:       domain.StyleHandsOn,
			PreferredDifficulty: domain.DifficultyBeginner,
			TimePerDay:          45,
			ViewedContentIDs:    []int{7},
			InterestTags:        []string{"python", "data-science", "ml", "numpy"},
		},
		{
			UserID:              "u3",
			Name:                "Carol",
			Goal:                "Master advanced NLP and LLM techniques for building AI-powered applications",
			LearningStyle:       domain.StyleReading,
			PreferredDifficulty: domain.DifficultyAdvanced,
			TimePerDay:          90,
			ViewedContentIDs:    []int{5},
			InterestTags:        []string{"nlp", "transformers", "llm", "prompt-engineering"},
		},
	}
}
