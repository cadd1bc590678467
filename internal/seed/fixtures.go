package seed

import (
	"time"

	"github.com/yigit/svitlms/internal/app/models"
)

const (
	// DemoPassword is the password of both demo accounts.
	DemoPassword = "password"
	// StudentEmail signs in the demo student.
	StudentEmail = "student@svit.edu"
	// FacultyEmail signs in the demo faculty member.
	FacultyEmail = "faculty@svit.edu"

	// RosterSize is the number of generated students per faculty course.
	RosterSize = 30
)

type courseFixture struct {
	course   models.Course
	teaching bool
	progress int
	modules  []models.CourseModule
}

func courseFixtures() []courseFixture {
	term := func(c models.Course) models.Course {
		c.Status = models.CourseActive
		c.Visibility = "visible"
		c.StartDate = "2025-01-15"
		c.EndDate = "2025-05-10"
		return c
	}
	return []courseFixture{
		{
			course: term(models.Course{
				Code: "CS301", Title: "Data Structures", Instructor: "Dr. Ramesh Kumar", Department: "Computer Science",
				Description: "This course introduces fundamental data structures such as arrays, linked lists, stacks, queues, trees, and graphs.",
				Credits:     4, Enrollment: 68, UnreadItems: 3, NextClass: "Tomorrow, 10:00 AM",
				CoverImage: "https://source.unsplash.com/random/300x200/?programming",
			}),
			teaching: true,
			progress: 65,
			modules: []models.CourseModule{
				{Title: "Introduction to Data Structures", Description: "Basic concepts and importance of data structures"},
				{Title: "Arrays and Linked Lists", Description: "Implementation and applications of arrays and linked lists"},
				{Title: "Stacks and Queues", Description: "Implementation and applications of stacks and queues"},
				{Title: "Trees and Graphs", Description: "Implementation and traversal algorithms for trees and graphs"},
			},
		},
		{
			course: term(models.Course{
				Code: "CS302", Title: "Database Systems", Instructor: "Dr. Priya Singh", Department: "Computer Science",
				Description: "Introduction to database design, implementation, and management with a focus on relational databases.",
				Credits:     4, Enrollment: 72, UnreadItems: 1, NextClass: "Today, 2:00 PM",
				CoverImage: "https://source.unsplash.com/random/300x200/?database",
			}),
			teaching: true,
			progress: 78,
			modules: []models.CourseModule{
				{Title: "Introduction to Databases"},
				{Title: "Relational Database Design"},
				{Title: "SQL Fundamentals"},
				{Title: "Transactions and Concurrency"},
			},
		},
		{
			course: term(models.Course{
				Code: "CS303", Title: "Computer Networks", Instructor: "Prof. Suresh Reddy", Department: "Computer Science",
				Description: "Covers the principles of computer networking, protocols, architecture, and network applications.",
				Credits:     3, Enrollment: 65, NextClass: "Friday, 11:30 AM",
				CoverImage: "https://source.unsplash.com/random/300x200/?network",
			}),
			teaching: true,
			progress: 42,
			modules: []models.CourseModule{
				{Title: "Introduction to Networking"},
				{Title: "The Physical Layer"},
				{Title: "The Network Layer"},
				{Title: "The Transport Layer"},
			},
		},
		{
			course: models.Course{
				Code: "CS304", Title: "Software Engineering", Instructor: "Dr. Lakshmi Rao", Department: "Computer Science",
				Description: "Principles and practices of software development including requirements, design, testing, and project management.",
				Status:      models.CourseActive, Credits: 3, UnreadItems: 5, NextClass: "Thursday, 9:00 AM",
				CoverImage: "https://source.unsplash.com/random/300x200/?software",
			},
			progress: 30,
		},
		{
			course: models.Course{
				Code: "EC301", Title: "Digital Electronics", Instructor: "Dr. Mohan Reddy", Department: "Electronics",
				Description: "Introduction to digital systems, Boolean algebra, logic gates, and digital circuit design.",
				Status:      models.CourseActive, Credits: 3, NextClass: "Wednesday, 2:00 PM",
				CoverImage: "https://source.unsplash.com/random/300x200/?electronics",
			},
			progress: 85,
		},
		{
			course: models.Course{
				Code: "ME302", Title: "Thermodynamics", Instructor: "Dr. Arvind Sharma", Department: "Mechanical",
				Description: "Study of energy, heat, work, and their interconversions in physical systems.",
				Status:      models.CourseActive, Credits: 3, UnreadItems: 2, NextClass: "Monday, 11:00 AM",
				CoverImage: "https://source.unsplash.com/random/300x200/?engineering",
			},
			progress: 50,
		},
		{
			course: models.Course{
				Code: "CS401", Title: "Computer Network Security", Instructor: "Dr. Ramesh Kumar", Department: "Computer Science",
				Description: "Cryptography, authentication protocols and the defence of networked systems.",
				Status:      models.CourseActive, Credits: 4,
				CoverImage: "https://source.unsplash.com/random/300x200/?security",
			},
			progress: 20,
		},
	}
}

type materialFixture struct {
	material   models.Material
	courseCode string
	starred    bool
}

func materialFixtures() []materialFixture {
	at := func(month, day, hour, minute int) time.Time {
		return time.Date(2025, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	}
	return []materialFixture{
		{courseCode: "CS401", material: models.Material{
			Title: "CNS Unit 1", Description: "Computer Network Security fundamentals and introduction",
			Type: models.MaterialPDF, Instructor: "Dr. Ramesh Kumar", Size: "4.2 MB", Downloads: 132,
			MimeType: "application/pdf", FileURL: "/assets/pdfs/CNS-UNIT-1.pdf", DateUploaded: at(3, 1, 10, 30),
		}},
		{courseCode: "CS401", material: models.Material{
			Title: "CNS Unit 2", Description: "Network security protocols and authentication mechanisms",
			Type: models.MaterialPDF, Instructor: "Dr. Ramesh Kumar", Size: "3.8 MB", Downloads: 118,
			MimeType: "application/pdf", DateUploaded: at(3, 8, 14, 15),
		}},
		{courseCode: "CS401", starred: true, material: models.Material{
			Title: "CNS Unit 4", Description: "Advanced cryptography concepts for network security",
			Type: models.MaterialPDF, Instructor: "Dr. Ramesh Kumar", Size: "5.1 MB", Downloads: 95,
			MimeType: "application/pdf", DateUploaded: at(3, 22, 9, 45),
		}},
		{courseCode: "CS301", material: models.Material{
			Title: "Introduction to Data Structures", Description: "Lecture slides covering basic concepts of data structures",
			Type: models.MaterialPDF, Instructor: "Dr. Ramesh Kumar", Size: "2.4 MB", Downloads: 156,
			MimeType: "application/pdf", DateUploaded: at(2, 15, 10, 30),
		}},
		{courseCode: "CS301", starred: true, material: models.Material{
			Title: "Arrays and Linked Lists Implementation", Description: "Video lecture demonstrating implementation of arrays and linked lists in Java",
			Type: models.MaterialVideo, Instructor: "Dr. Ramesh Kumar", Size: "120 MB", Duration: "45:20", Downloads: 132,
			MimeType: "video/mp4", FileURL: "https://example.com/videos/arrays_linked_lists.mp4", DateUploaded: at(2, 20, 14, 15),
		}},
		{courseCode: "CS302", material: models.Material{
			Title: "Database Design Fundamentals", Description: "Comprehensive notes on database design principles and normalization",
			Type: models.MaterialPDF, Instructor: "Dr. Priya Singh", Size: "3.8 MB", Downloads: 98,
			MimeType: "application/pdf", DateUploaded: at(1, 28, 9, 45),
		}},
	}
}

type assignmentFixture struct {
	assignment models.Assignment
	courseCode string
}

func assignmentFixtures() []assignmentFixture {
	at := func(month, day, hour, minute int) time.Time {
		return time.Date(2025, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	}
	ptrTime := func(t time.Time) *time.Time { return &t }
	ptrFloat := func(f float64) *float64 { return &f }

	return []assignmentFixture{
		{courseCode: "CS301", assignment: models.Assignment{
			Title: "Assignment 1: Data Structures Implementation", DueDate: at(4, 15, 23, 59),
			Status: models.AssignmentCompleted, SubmissionDate: ptrTime(at(4, 12, 14, 30)), Grade: ptrFloat(92), TotalPoints: 100,
		}},
		{courseCode: "CS302", assignment: models.Assignment{
			Title: "Assignment 2: Normalization in Database Design", DueDate: at(4, 20, 23, 59),
			Status: models.AssignmentInProgress, TotalPoints: 100,
		}},
		{courseCode: "CS401", assignment: models.Assignment{
			Title: "Assignment 3: Network Security Analysis", DueDate: at(4, 25, 23, 59),
			Status: models.AssignmentPending, TotalPoints: 100,
		}},
		{courseCode: "CS304", assignment: models.Assignment{
			Title: "Assignment 1: Software Engineering Principles", DueDate: at(4, 10, 23, 59),
			Status: models.AssignmentOverdue, TotalPoints: 100,
		}},
		{courseCode: "CS303", assignment: models.Assignment{
			Title: "Quiz 1: Computer Networks Fundamentals", DueDate: at(4, 5, 14, 0),
			Status: models.AssignmentCompleted, SubmissionDate: ptrTime(at(4, 5, 13, 25)), Grade: ptrFloat(85), TotalPoints: 100,
		}},
	}
}

type announcementFixture struct {
	announcement models.Announcement
	courseCode   string
	age          time.Duration
}

func announcementFixtures() []announcementFixture {
	day := 24 * time.Hour
	return []announcementFixture{
		{age: 2 * day, announcement: models.Announcement{
			Title:     "Mid-semester Examination Schedule",
			Content:   "The mid-semester examinations will commence from April 10th. The detailed schedule has been uploaded to the portal.",
			Author:    "Examination Cell",
			Important: true,
			Attachments: []models.Attachment{
				{Name: "exam_schedule.pdf", URL: "#", Type: "pdf"},
			},
		}},
		{age: 7 * day, announcement: models.Announcement{
			Title:   "Technical Symposium - TechVista 2025",
			Content: "Register for TechVista 2025, the annual technical symposium organized by the Dept. of Computer Science.",
			Author:  "Student Council",
			Attachments: []models.Attachment{
				{Name: "techvista_brochure.pdf", URL: "#", Type: "pdf"},
				{Name: "registration_form.docx", URL: "#", Type: "doc"},
			},
		}},
		{courseCode: "CS302", age: 3 * day, announcement: models.Announcement{
			Title:     "New Assignment Posted in Database Systems",
			Content:   "A new database design assignment has been posted. Please check the course materials section.",
			Author:    "Dr. Priya Singh",
			Important: true,
		}},
		{courseCode: "CS301", age: 4 * day, announcement: models.Announcement{
			Title:   "Office Hours Change for Data Structures",
			Content: "Office hours for Data Structures class will now be held on Mondays and Wednesdays from 2-4 PM.",
			Author:  "Dr. Ramesh Kumar",
		}},
	}
}

func gradeFixtures() []models.GradeRecord {
	score := func(f float64) *float64 { return &f }
	components := func(assignments, quizzes, midterm, final *float64) []models.GradeComponent {
		return []models.GradeComponent{
			{Name: "Assignments", Weight: 30, Score: assignments},
			{Name: "Quizzes", Weight: 20, Score: quizzes},
			{Name: "Mid-term", Weight: 20, Score: midterm},
			{Name: "Final Exam", Weight: 30, Score: final},
		}
	}
	return []models.GradeRecord{
		{Code: "CS301", Title: "Data Structures", Credits: 4, Term: "Spring 2025", Instructor: "Dr. Ramesh Kumar",
			Grade: "A", Percentage: score(92), Status: "completed",
			Components: components(score(88), score(92), score(95), score(94))},
		{Code: "CS302", Title: "Database Systems", Credits: 4, Term: "Spring 2025", Instructor: "Dr. Priya Singh",
			Grade: "B+", Percentage: score(85), Status: "in_progress",
			Components: components(score(82), score(88), score(86), nil)},
		{Code: "CS303", Title: "Computer Networks", Credits: 3, Term: "Spring 2025", Instructor: "Prof. Suresh Reddy",
			Grade: "A-", Percentage: score(88), Status: "in_progress",
			Components: components(score(90), score(82), score(89), nil)},
		{Code: "CS401", Title: "Computer Network Security", Credits: 4, Term: "Spring 2025", Instructor: "Dr. Ramesh Kumar",
			Status:     "in_progress",
			Components: components(score(78), score(85), nil, nil)},
		{Code: "CS201", Title: "Programming Fundamentals", Credits: 4, Term: "Fall 2024", Instructor: "Dr. Anil Gupta",
			Grade: "A", Percentage: score(94), Status: "completed",
			Components: components(score(96), score(92), score(91), score(95))},
	}
}

var (
	firstNames = []string{"John", "Jane", "Michael", "Sarah", "David", "Emily", "Raj", "Priya", "Akash", "Shreya"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Jones", "Brown", "Sharma", "Patel", "Reddy", "Kumar", "Singh"}
)
