package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the task and user endpoints on r.
func RegisterRoutes(r chi.Router, tasks *TaskHandler, users *UserHandler) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", tasks.ListTasks)
		r.Post("/", tasks.CreateTask)
		r.Get("/{id}", tasks.GetTask)
		r.Put("/{id}", tasks.UpdateTask)
		r.Delete("/{id}", tasks.DeleteTask)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.ListUsers)
		r.Post("/", users.CreateUser)
		r.Get("/{id}", users.GetUser)
		r.Put("/{id}", users.UpdateUser)
		r.Delete("/{id}", users.DeleteUser)
	})
}
