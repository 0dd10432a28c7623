package router

import (
	"context"
	"fmt"
	"net/http"
	"rovify-backend/chain"
	"rovify-backend/config"
	"rovify-backend/event"
	"rovify-backend/factory"
	"rovify-backend/firebase"
	"rovify-backend/handler"
	"rovify-backend/healthcheck"
	"rovify-backend/logger"
	"rovify-backend/middleware"
	"rovify-backend/organiser"
	"rovify-backend/pinata"
	"rovify-backend/profile"
	"rovify-backend/response"
	"rovify-backend/session"
	"rovify-backend/storage"
	"rovify-backend/twilio"
	"rovify-backend/user"
	"rovify-backend/vault"
	"rovify-backend/verification"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// Services are the handlers' dependencies. Uploads is nil when no bucket is configured.
type Services struct {
	Sessions  *session.Issuer
	Users     *user.User
	Events    *event.Event
	Organiser *organiser.Organiser
	Profile   *profile.Profile
	Uploads   storage.Uploader
}

// NewServices builds every service from the loaded configuration. Integrations without
// configuration are left unset and their endpoints answer 503.
func NewServices(ctx context.Context, f factory.Factory) *Services {
	sessions := session.NewIssuer(viper.GetString(config.Secret), viper.GetDuration(config.SessionTTL))

	var identity firebase.Verifier
	if app := f.FirebaseApp(ctx); app != nil {
		identity = firebase.NewVerifier(app)
	}

	var reader chain.Reader
	if rpc := viper.GetString(config.EthereumRPCURL); rpc != "" {
		contract, err := chain.Dial(ctx, rpc, viper.GetString(config.EthereumContractAddress))
		if err != nil {
			logger.Fatalf(ctx, "router: error dialing ethereum node: %+v", err)
		}
		reader = contract
	}

	var payoutVault organiser.PayoutVault
	if addr := viper.GetString(config.VaultAddress); addr != "" {
		v, err := vault.New(
			viper.GetString(config.VaultToken),
			viper.GetString(config.VaultUnSealKey),
			addr,
			viper.GetString(config.PayoutPath))
		if err != nil {
			logger.Fatalf(ctx, "router: error creating vault client: %+v", err)
		}
		payoutVault = v
	}

	var codes organiser.CodeVerifier
	if client := f.Redis(ctx); client != nil && viper.GetString(config.TwilioAccountSID) != "" {
		codes = verification.New(
			verification.NewRedisStore(client),
			twilio.NewSender(
				viper.GetString(config.TwilioAccountSID),
				viper.GetString(config.TwilioAuthToken),
				viper.GetString(config.TwilioURL),
				viper.GetString(config.TwilioFrom)))
	}

	var uploads storage.Uploader
	if bucket := viper.GetString(config.S3Bucket); bucket != "" {
		s, err := storage.New(ctx,
			viper.GetString(config.S3AccessKey),
			viper.GetString(config.S3SecretKey),
			viper.GetString(config.S3Region),
			viper.GetString(config.S3Endpoint),
			bucket,
			viper.GetString(config.S3PublicURL))
		if err != nil {
			logger.Fatalf(ctx, "router: error creating storage client: %+v", err)
		}
		uploads = s
	}

	pinner := pinata.New(
		viper.GetString(config.PinataAPIKey),
		viper.GetString(config.PinataSecretKey),
		viper.GetString(config.PinataURL),
		viper.GetString(config.PinataGateway))

	codecKey := []byte(viper.GetString(config.CodecKey))
	if len(codecKey) == 0 {
		logger.Warnf(ctx, "router: %s is not set, api keys can not be issued", config.CodecKey)
	}

	events := event.NewEvent(pinner, reader)
	return &Services{
		Sessions:  sessions,
		Users:     user.NewUser(sessions, identity),
		Events:    events,
		Organiser: organiser.NewOrganiser(events, payoutVault, codes, codecKey, viper.GetBool(config.PayoutRequireOTP)),
		Profile:   profile.NewProfile(),
		Uploads:   uploads,
	}
}

// Router returns the router for all the API handlers.
func Router(ctx context.Context, f factory.Factory) *mux.Router {
	return Routes(NewServices(ctx, f), f)
}

// Routes mounts every endpoint on a new router.
func Routes(s *Services, f factory.Factory) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.SetCorrelationIDHeader)
	r.Use(middleware.PanicHandler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.ResourceNotFound(fmt.Sprintf("The requested resource was not found: path: %s, method: %s", req.URL.Path, req.Method), "The requested resource was not found!").Send(req.Context(), w)
	})

	r.Use(middleware.ResponseTimeLogging)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.SetContentTypeHeader)

	r.HandleFunc("/healthcheck", healthcheck.Self(f)).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()

	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/login", handler.Login(s.Users, f)).Methods(http.MethodPost)
	authRouter.HandleFunc("/register", handler.Register(s.Users, f)).Methods(http.MethodPost)
	authRouter.HandleFunc("/social", handler.SocialLogin(s.Users, f)).Methods(http.MethodPost)

	// Reads that personalise the answer when a session is present.
	public := api.NewRoute().Subrouter()
	public.Use(middleware.Identify(s.Sessions))
	public.HandleFunc("/events", handler.ListEvents(s.Events, f)).Methods(http.MethodGet)
	public.HandleFunc("/events/{id}", handler.GetEvent(s.Events, f)).Methods(http.MethodGet)
	public.HandleFunc("/users/{id}", handler.GetUser(s.Users, f)).Methods(http.MethodGet)
	public.HandleFunc("/nft/events", handler.ChainEvents(s.Events)).Methods(http.MethodGet)
	public.HandleFunc("/nft/listings", handler.Listings(s.Events)).Methods(http.MethodGet)
	public.HandleFunc("/nft/owners/{address}/tickets", handler.OwnerTickets(s.Events)).Methods(http.MethodGet)

	private := api.NewRoute().Subrouter()
	private.Use(middleware.Authenticate(s.Sessions))
	private.HandleFunc("/users/{id}", handler.UpdateUser(s.Users, f)).Methods(http.MethodPut)
	private.HandleFunc("/events", handler.CreateEvent(s.Events, f)).Methods(http.MethodPost)
	private.HandleFunc("/events/{id}", handler.UpdateEvent(s.Events, f)).Methods(http.MethodPut)
	private.HandleFunc("/events/{id}", handler.DeleteEvent(s.Events, f)).Methods(http.MethodDelete)
	private.HandleFunc("/events/{id}/metadata", handler.PinEventMetadata(s.Events, f)).Methods(http.MethodPost)
	private.HandleFunc("/tickets/{id}/nft", handler.LinkTicket(s.Events, f)).Methods(http.MethodPut)

	private.HandleFunc("/ipfs/pinata/upload-file", handler.PinFile(s.Events)).Methods(http.MethodPost)
	private.HandleFunc("/ipfs/add", handler.PinJSON(s.Events)).Methods(http.MethodPost)
	private.HandleFunc("/uploads/image", handler.UploadImage(s.Uploads)).Methods(http.MethodPost)
	private.HandleFunc("/uploads/presign", handler.PresignUpload(s.Uploads)).Methods(http.MethodPost)

	organiserRouter := private.PathPrefix("/organiser").Subrouter()
	organiserRouter.HandleFunc("/dashboard", handler.Dashboard(s.Organiser, f)).Methods(http.MethodGet)
	organiserRouter.HandleFunc("/analytics", handler.Analytics(s.Organiser, f)).Methods(http.MethodGet)
	organiserRouter.HandleFunc("/attendees", handler.Attendees(s.Organiser, f)).Methods(http.MethodGet)
	organiserRouter.HandleFunc("/events", handler.OrganiserEvents(s.Organiser, f)).Methods(http.MethodGet)
	organiserRouter.HandleFunc("/events", handler.CreateOrganiserEvent(s.Organiser, f)).Methods(http.MethodPost)
	organiserRouter.HandleFunc("/payments", handler.Payments(s.Organiser, f)).Methods(http.MethodGet)
	organiserRouter.HandleFunc("/payments", handler.PaymentAction(s.Organiser, f)).Methods(http.MethodPost)
	organiserRouter.HandleFunc("/settings", handler.Settings(s.Organiser, f)).Methods(http.MethodGet)
	organiserRouter.HandleFunc("/settings", handler.UpdateSettings(s.Organiser, f)).Methods(http.MethodPut)

	profileRouter := private.PathPrefix("/profile").Subrouter()
	profileRouter.HandleFunc("", handler.GetProfile(s.Profile, f)).Methods(http.MethodGet)
	profileRouter.HandleFunc("", handler.UpdateProfile(s.Profile, f)).Methods(http.MethodPut)
	profileRouter.HandleFunc("/achievements", handler.Achievements(s.Profile, f)).Methods(http.MethodGet)
	profileRouter.HandleFunc("/achievements", handler.UnlockAchievement(s.Profile, f)).Methods(http.MethodPost)
	profileRouter.HandleFunc("/activity", handler.Activity(s.Profile, f)).Methods(http.MethodGet)
	profileRouter.HandleFunc("/activity", handler.LogActivity(s.Profile, f)).Methods(http.MethodPost)
	profileRouter.HandleFunc("/collections", handler.Collections(s.Profile, f)).Methods(http.MethodGet)
	profileRouter.HandleFunc("/collections", handler.CreateCollection(s.Profile, f)).Methods(http.MethodPost)
	profileRouter.HandleFunc("/collections/{id}", handler.Collection(s.Profile, f)).Methods(http.MethodGet)
	profileRouter.HandleFunc("/collections/{id}", handler.UpdateCollection(s.Profile, f)).Methods(http.MethodPut)
	profileRouter.HandleFunc("/collections/{id}", handler.DeleteCollection(s.Profile, f)).Methods(http.MethodDelete)
	profileRouter.HandleFunc("/connections", handler.Connections(s.Profile, f)).Methods(http.MethodGet)
	profileRouter.HandleFunc("/connections", handler.RequestConnection(s.Profile, f)).Methods(http.MethodPost)
	profileRouter.HandleFunc("/connections/{id}", handler.UpdateConnection(s.Profile, f)).Methods(http.MethodPut)
	profileRouter.HandleFunc("/connections/{id}", handler.RemoveConnection(s.Profile, f)).Methods(http.MethodDelete)
	profileRouter.HandleFunc("/wallet", handler.Wallet(s.Profile, f)).Methods(http.MethodGet)
	profileRouter.HandleFunc("/wallet", handler.RecordTransaction(s.Profile, f)).Methods(http.MethodPost)

	return r
}
