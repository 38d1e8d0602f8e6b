package models

// All trả về danh sách model để AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Team{},
		&GameSession{},
		&Round{},
		&QuestionCategory{},
		&QuestionTag{},
		&CaseFile{},
		&Question{},
		&QuestionOption{},
		&Submission{},
		&BulkOperation{},
	}
}
