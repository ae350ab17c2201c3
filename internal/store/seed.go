package store

import (
	"context"
	"fmt"
	"time"
)

type seedPlacement struct {
	Company, Role, Location, Description, Link, Eligibility, Deadline string
}

var samplePlacements = []seedPlacement{
	{"Google", "Software Engineer", "Bangalore", "Work on scalable systems and new features for global products.", "https://careers.google.com", "B.Tech/B.E in CS", "2025-12-31"},
	{"TCS", "System Analyst", "Mumbai", "Client projects and solutions in business systems.", "https://www.tcs.com", "Any Graduate", "2025-12-31"},
	{"Infosys", "Java Developer", "Hyderabad", "Backend application development for enterprise clients.", "https://www.infosys.com", "B.Tech/B.E in IT", "2025-12-31"},
	{"Amazon", "Data Engineer", "Chennai", "Build and optimize data pipelines and analytics systems.", "https://www.amazon.jobs", "B.Tech/B.E in CS or Data Science", "2025-11-30"},
	{"Microsoft", "Cloud Support Engineer", "Pune", "Support Azure customers with cloud deployments and troubleshooting.", "https://careers.microsoft.com", "B.Tech/B.E in CS/IT/ECE", "2025-12-15"},
	{"Wipro", "Cybersecurity Analyst", "Noida", "Monitor and protect enterprise infrastructure against threats.", "https://careers.wipro.com", "B.Tech/B.E in CS/IT", "2025-12-20"},
	{"Accenture", "AI Research Intern", "Gurgaon", "Work on AI-driven automation and NLP models.", "https://www.accenture.com", "B.Tech/B.E/M.Tech in CS or AI", "2025-11-25"},
	{"IBM", "Software Developer", "Pune", "Develop and maintain enterprise-grade software solutions.", "https://www.ibm.com/careers", "B.Tech/B.E in CS/IT", "2025-12-10"},
	{"Deloitte", "Business Technology Analyst", "Bangalore", "Support consulting projects using data analytics and business tech.", "https://www.deloitte.com", "B.Tech/B.E/MBA", "2025-12-05"},
	{"Capgemini", "DevOps Engineer", "Kolkata", "Automate deployments and CI/CD pipelines using modern tools.", "https://www.capgemini.com", "B.Tech/B.E in CS/IT", "2025-12-25"},
	{"Flipkart", "Frontend Developer", "Bangalore", "Design responsive UI for e-commerce platform using React and JS.", "https://www.flipkartcareers.com", "B.Tech/B.E in CS/IT", "2025-12-18"},
	{"Adobe", "UX Designer Intern", "Noida", "Design intuitive user experiences and prototypes for creative tools.", "https://adobe.wd5.myworkdayjobs.com", "B.Des/B.Tech with UI/UX experience", "2025-12-28"},
	{"Swiggy", "Backend Developer", "Bangalore", "Work on order management and delivery optimization systems.", "https://careers.swiggy.com", "B.Tech/B.E in CS/IT", "2025-11-29"},
	{"Paytm", "Mobile App Developer", "Noida", "Develop new features for the Paytm app ecosystem.", "https://paytm.com/careers", "B.Tech/B.E in CS/IT", "2025-12-22"},
	{"ISRO", "Research Scientist", "Ahmedabad", "Work on satellite systems and data analysis.", "https://www.isro.gov.in", "M.Sc/M.Tech in Physics, CS, or Electronics", "2025-12-31"},
	{"Zomato", "Machine Learning Engineer", "Gurgaon", "Build recommendation and delivery optimization algorithms.", "https://www.zomato.com/careers", "B.Tech/B.E in CS or Data Science", "2025-12-12"},
}

// SeedPlacements inserts the sample placements when the table is empty.
func (d *DB) SeedPlacements(ctx context.Context) (int, error) {
	var count int
	if err := d.Client.QueryRowContext(ctx, `SELECT COUNT(*) FROM placements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := d.Client.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, p := range samplePlacements {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO placements (company, role, location, description, link, eligibility, deadline, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.Company, p.Role, p.Location, p.Description, p.Link, p.Eligibility, p.Deadline, now); err != nil {
			return 0, fmt.Errorf("seed %s: %w", p.Company, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(samplePlacements), nil
}
