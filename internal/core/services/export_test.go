package services

// PublishSynchronously makes alert publishing run inline so tests can assert on it
func PublishSynchronously(s *JournalService) {
	s.publishAsync = func(f func()) { f() }
}
