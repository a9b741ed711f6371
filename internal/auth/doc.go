// Package auth identifies who is studying and protects the forms they post.
//
// There are no passwords: a user is identified by the username typed into
// the start form, kept in an scs session together with the study state
// (see study.State) and one-shot flash messages.
//
// # Configuration
//
//	SESSION_STORE=memory              # or sqlite, to survive restarts
//	SESSION_SECRET=<base64-32-bytes>  # CSRF key; auto-generated if empty
//	SESSION_LIFETIME=24h
//	SESSION_IDLE_TIMEOUT=2h
//	SESSION_SECURE_COOKIES=false
//
// # Usage
//
//	sm, err := auth.NewSessionManager(sqlDB, cfg.Session)
//	router.Use(sm.SessionLoadSave())
//	study := router.Group("/study", sm.RequireUsername())
package auth
