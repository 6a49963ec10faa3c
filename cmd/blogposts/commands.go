package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sushihentaime/blogposts/internal/blogservice"
	"github.com/sushihentaime/blogposts/internal/prefs"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
	"github.com/sushihentaime/blogposts/internal/userservice"
)

type cli struct {
	configPath string
	debug      bool
}

type runFunc func(ctx context.Context, app *application, args []string) error

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "blogposts",
		Short:        "Browse and publish blog posts from the command line",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", ".env", "path to the .env configuration file")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.whoamiCmd(),
		c.logoutCmd(),
		c.accountCmd(),
		c.postsCmd(),
		c.prefsCmd(),
	)

	return root
}

func (c *cli) config() (*Config, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if c.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// withApp builds the application for a single command run and tears it down
// afterwards.
func (c *cli) withApp(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := c.config()
		if err != nil {
			return err
		}

		app, err := newApplication(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer app.close()

		return fn(cmd.Context(), app, args)
	}
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			vs, err := drain(app, app.auth.AttemptLogin(ctx, email, password))
			if err != nil {
				return err
			}
			app.session.Login(vs.AuthToken)
			fmt.Fprintf(app.out, "Logged in as %s.\n", email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")

	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var email, username, password, confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			vs, err := drain(app, app.auth.AttemptRegistration(ctx, email, username, password, confirm))
			if err != nil {
				return err
			}
			app.session.Login(vs.AuthToken)
			fmt.Fprintf(app.out, "Registered %s.\n", username)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "password again")

	return cmd
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account of the remembered session",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			if !app.restoreSession(ctx) {
				fmt.Fprintln(app.out, "Not logged in.")
				return nil
			}

			vs, err := drain(app, app.account.GetAccountProperties(ctx, app.session.CachedToken()))
			if err != nil {
				return err
			}
			if vs == nil {
				vs = &userservice.AccountViewState{}
			}
			printAccount(app.out, vs.AccountProperties)
			return nil
		}),
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered session",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			if app.restoreSession(ctx) {
				select {
				case <-app.session.Logout():
				case <-ctx.Done():
					return ctx.Err()
				}
				fmt.Fprintln(app.out, "Logged out.")
			} else {
				fmt.Fprintln(app.out, "Not logged in.")
			}

			if purge {
				return app.purgeCache()
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "also drop every cached account, token and post")

	return cmd
}

func (c *cli) accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or change account details",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Refresh and show account properties",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}

			vs, err := drain(app, app.account.GetAccountProperties(ctx, token))
			if err != nil {
				return err
			}
			if vs == nil {
				vs = &userservice.AccountViewState{}
			}
			printAccount(app.out, vs.AccountProperties)
			return nil
		}),
	}

	var email, username string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change email and username",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}

			_, err = drain(app, app.account.SaveAccountProperties(ctx, token, email, username))
			return err
		}),
	}
	update.Flags().StringVar(&email, "email", "", "new email")
	update.Flags().StringVar(&username, "username", "", "new username")

	var current, next, confirm string
	password := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}

			_, err = drain(app, app.account.UpdatePassword(ctx, token, current, next, confirm))
			return err
		}),
	}
	password.Flags().StringVar(&current, "current", "", "current password")
	password.Flags().StringVar(&next, "new", "", "new password")
	password.Flags().StringVar(&confirm, "confirm", "", "new password again")

	cmd.AddCommand(get, update, password)
	return cmd
}

func (c *cli) postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Search, publish and manage blog posts",
	}

	var (
		query, order string
		page         int
		all          bool
	)
	search := &cobra.Command{
		Use:   "search",
		Short: "Search blog posts, refreshing the local cache",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}
			if order == "" {
				order = app.prefs.FilterAndOrder()
			}

			if all {
				return searchAll(ctx, app, token, query, order)
			}

			vs, err := drain(app, app.blogs.SearchBlogPosts(ctx, token, query, order, page))
			if err != nil {
				if blogservice.IsPaginationDone(err.Error()) {
					fmt.Fprintln(app.out, "No more blog posts.")
					return nil
				}
				return err
			}
			printPosts(app.out, vs.BlogFields.BlogList)
			return nil
		}),
	}
	search.Flags().StringVar(&query, "query", "", "search text")
	search.Flags().StringVar(&order, "order", "", "ordering, e.g. -date_updated (default from preferences)")
	search.Flags().IntVar(&page, "page", 1, "number of pages to load")
	search.Flags().BoolVar(&all, "all", false, "load every page")

	var restoreQuery, restoreOrder string
	var restorePage int
	restore := &cobra.Command{
		Use:   "restore",
		Short: "List blog posts from the local cache only",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			if restoreOrder == "" {
				restoreOrder = app.prefs.FilterAndOrder()
			}

			vs, err := drain(app, app.blogs.RestoreBlogListFromCache(ctx, restoreQuery, restoreOrder, restorePage))
			if err != nil {
				return err
			}
			printPosts(app.out, vs.BlogFields.BlogList)
			return nil
		}),
	}
	restore.Flags().StringVar(&restoreQuery, "query", "", "search text")
	restore.Flags().StringVar(&restoreOrder, "order", "", "ordering (default from preferences)")
	restore.Flags().IntVar(&restorePage, "page", 1, "number of pages to list")

	isAuthor := &cobra.Command{
		Use:   "is-author <slug>",
		Short: "Tell whether you may edit a post",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(func(ctx context.Context, app *application, args []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}

			vs, err := drain(app, app.blogs.IsAuthorOfBlogPost(ctx, token, args[0]))
			if err != nil {
				return err
			}
			if vs.ViewBlogFields.IsAuthorOfBlogPost {
				fmt.Fprintln(app.out, "You are the author of this post.")
			} else {
				fmt.Fprintln(app.out, "You are not the author of this post.")
			}
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(func(ctx context.Context, app *application, args []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}

			post, err := app.models.BlogPosts.SearchBySlug(ctx, args[0])
			if err != nil {
				if !errors.Is(err, storage.ErrRecordNotFound) {
					return err
				}
				post = &storage.BlogPost{Slug: args[0]}
			}

			_, err = drain(app, app.blogs.DeleteBlogPost(ctx, token, *post))
			return err
		}),
	}

	var title, body, image string
	update := &cobra.Command{
		Use:   "update <slug>",
		Short: "Edit one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(func(ctx context.Context, app *application, args []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}
			img, err := readImage(image)
			if err != nil {
				return err
			}

			vs, err := drain(app, app.blogs.UpdateBlogPost(ctx, token, args[0], title, body, img))
			if err != nil {
				return err
			}
			printPost(app.out, vs.ViewBlogFields.BlogPost)
			return nil
		}),
	}
	update.Flags().StringVar(&title, "title", "", "post title")
	update.Flags().StringVar(&body, "body", "", "post body")
	update.Flags().StringVar(&image, "image", "", "path of an image to upload")

	var newTitle, newBody, newImage string
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(ctx context.Context, app *application, _ []string) error {
			token, err := app.requireToken(ctx)
			if err != nil {
				return err
			}
			img, err := readImage(newImage)
			if err != nil {
				return err
			}

			vs, err := drain(app, app.creator.CreateNewBlogPost(ctx, token, newTitle, newBody, img))
			if err != nil {
				return err
			}
			printPost(app.out, vs.BlogPost)
			return nil
		}),
	}
	create.Flags().StringVar(&newTitle, "title", "", "post title")
	create.Flags().StringVar(&newBody, "body", "", "post body")
	create.Flags().StringVar(&newImage, "image", "", "path of an image to upload")

	cmd.AddCommand(search, restore, isAuthor, del, update, create)
	return cmd
}

// searchAll walks the list page by page until the API reports the end.
func searchAll(ctx context.Context, app *application, token *storage.AuthToken, query, order string) error {
	p := blogservice.NewPagination(query, order)

	page, more := p.LoadFirstPage(), true
	for more {
		state := resource.Final(app.blogs.SearchBlogPosts(ctx, token, p.Query, p.FilterAndOrder, page))
		if resp, show := p.Handle(state); show {
			if state.Error != nil {
				return responseError(resp)
			}
			printResponse(app.out, resp)
		}
		page, more = p.NextPage()
	}

	printPosts(app.out, p.Posts())
	return nil
}

func (c *cli) prefsCmd() *cobra.Command {
	var filter, order string

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the default blog list ordering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := prefs.Open(cfg.PrefsFile)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("filter") {
				if err := store.SetBlogFilter(filter); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("order") {
				switch order {
				case "asc":
					err = store.SetBlogOrder(prefs.OrderAsc)
				case "desc":
					err = store.SetBlogOrder(prefs.OrderDesc)
				default:
					err = fmt.Errorf("%w: order %q", prefs.ErrInvalidPreference, order)
				}
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ordering: %s\n", store.FilterAndOrder())
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "date_updated or username")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc")

	return cmd
}
