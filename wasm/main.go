//go:build js && wasm

// Command wasm is the browser client. It is compiled with GOOS=js GOARCH=wasm
// and loaded by every page shell; the current path picks the controller.
package main

import (
	"context"
	"net/http"
	"strings"
	"syscall/js"
	"time"

	"solveit/internal/api"
	"solveit/internal/auth"
	"solveit/internal/logger"
	"solveit/internal/page"
	"solveit/internal/problems"
	"solveit/internal/profile"
)

const requestTimeout = 10 * time.Second

func main() {
	log := logger.New("wasm", "info")
	client := api.New(window.Get("location").Get("origin").String(), requestTimeout,
		api.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
		api.WithLogger(log),
	)

	switch path := window.Get("location").Get("pathname").String(); {
	case strings.HasPrefix(path, "/login"), strings.HasPrefix(path, "/signup"):
		bindAuth(client, log)
	case strings.HasPrefix(path, "/profile"):
		bindProfile(client, log)
	default:
		bindProblems(client, log)
	}

	<-make(chan struct{})
}

func bindProblems(client *api.Client, log *logger.Logger) {
	form := byID("problemForm")
	board := page.NewBoard(sectionDisplay(form, ".problems-list"), page.DefaultMessageTimeout)
	ctrl := problems.NewController(problems.Deps{
		Client:     client,
		View:       &problemsView{log: log},
		Navigator:  locationNavigator{},
		Notifier:   board,
		Confirmer:  windowConfirmer{},
		Downloader: blobDownloader{},
		Logger:     log,
	})
	ctx := context.Background()

	on(form, "submit", true, func(js.Value) {
		ctrl.Submit(ctx, problems.Form{
			Problem:  formField(form, "problem"),
			Solution: formField(form, "solution"),
			Category: formField(form, "category"),
		})
	})
	on(byID("refreshBtn"), "click", false, func(js.Value) { ctrl.Refresh(ctx) })
	on(byID("logoutBtn"), "click", false, func(js.Value) { ctrl.Logout(ctx) })
	on(byID("exportBtn"), "click", false, func(js.Value) { ctrl.Export(ctx) })
	on(byID("cancelEditBtn"), "click", false, func(js.Value) { ctrl.CancelEdit() })

	filter := func(js.Value) {
		ctrl.SetFilter(problems.Filter{Search: value("searchInput"), Category: value("categoryFilter")})
	}
	on(byID("searchInput"), "input", false, filter)
	on(byID("categoryFilter"), "change", false, filter)

	on(byID("editForm"), "submit", true, func(js.Value) {
		ctrl.SubmitModal(ctx, problems.Form{
			Problem:  value("editProblem"),
			Solution: value("editSolution"),
			Category: value("editCategory"),
		})
	})
	on(document.Call("querySelector", ".close-modal"), "click", false, func(js.Value) { ctrl.CloseModal() })
	modal := byID("editModal")
	on(modal, "click", false, func(ev js.Value) {
		if ev.Get("target").Equal(modal) {
			ctrl.CloseModal()
		}
	})

	container := byID("problemsContainer")
	on(container, "click", false, func(ev js.Value) {
		target := ev.Get("target")
		if id, ok := cardAction(target, ".btn-delete"); ok {
			ctrl.Delete(ctx, id)
			return
		}
		if id, ok := cardAction(target, ".btn-edit"); ok {
			ctrl.OpenModal(ctx, id)
		}
	})
	on(container, "dblclick", false, func(ev js.Value) {
		if id, ok := cardAction(ev.Get("target"), ".problem-card"); ok {
			ctrl.StartInlineEdit(id)
		}
	})

	go ctrl.Init(ctx)
}

func bindAuth(client *api.Client, log *logger.Logger) {
	board := page.NewBoard(alertDisplay(), page.DefaultMessageTimeout)
	ctrl := auth.NewController(client, locationNavigator{}, board, log)
	ctx := context.Background()

	login := byID("loginForm")
	on(login, "submit", true, func(js.Value) {
		ctrl.Login(ctx, auth.LoginForm{
			Username: formField(login, "username"),
			Password: formField(login, "password"),
		})
	})

	signup := byID("signupForm")
	on(signup, "submit", true, func(js.Value) {
		ctrl.Signup(ctx, auth.SignupForm{
			Username: formField(signup, "username"),
			Email:    formField(signup, "email"),
			Password: formField(signup, "password"),
		})
	})
}

func bindProfile(client *api.Client, log *logger.Logger) {
	form := byID("passwordForm")
	board := page.NewBoard(sectionDisplay(form, "body"), page.DefaultMessageTimeout)
	ctrl := profile.NewController(client, &profileView{log: log}, locationNavigator{}, board, log)
	ctx := context.Background()

	on(form, "submit", true, func(js.Value) {
		ctrl.ChangePassword(ctx, profile.PasswordForm{
			Current: formField(form, "currentPassword"),
			New:     formField(form, "newPassword"),
			Confirm: formField(form, "confirmPassword"),
		})
	})
	on(byID("logoutBtn"), "click", false, func(js.Value) { ctrl.Logout(ctx) })

	go ctrl.Init(ctx)
}
